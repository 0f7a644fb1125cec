package routes

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"metrology-portal/internal/controllers"
	"metrology-portal/internal/services"
)

func runEquipmentRouter(
	secureGroup *echo.Group,
	equipmentService services.EquipmentServiceInterface,
	importer services.EquipmentImporterInterface,
	logger *zap.Logger,
) {
	equipmentCtrl := controllers.NewEquipmentController(equipmentService, importer, logger)

	secureGroup.GET("/equipment", equipmentCtrl.GetEquipments)
	secureGroup.GET("/equipment/:id", equipmentCtrl.FindEquipment)
	secureGroup.POST("/equipment", equipmentCtrl.CreateEquipment)
	secureGroup.PUT("/equipment/:id", equipmentCtrl.UpdateEquipment)
	secureGroup.DELETE("/equipment/:id", equipmentCtrl.DeleteEquipment)
	secureGroup.POST("/equipment/import", equipmentCtrl.ImportEquipments)
	secureGroup.GET("/equipment/export", equipmentCtrl.ExportEquipments)
}
