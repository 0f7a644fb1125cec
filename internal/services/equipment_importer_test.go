package services

import (
	"bytes"
	"context"
	"testing"

	"metrology-portal/pkg/constants"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

type fakeTxManager struct{}

func (f *fakeTxManager) RunInTransaction(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

func buildImportFile(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	sheet := "Лист1"
	f.SetSheetName("Sheet1", sheet)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func TestImport_HeaderNotOnFirstRow(t *testing.T) {
	repo := &fakeEquipmentRepo{}
	importer := NewEquipmentImporter(repo, &fakeTxManager{}, zap.NewNop())

	file := buildImportFile(t, [][]interface{}{
		{"Перечень средств измерений ООО «Завод»"},
		{},
		{"№", "Наименование", "Тип", "Заводской номер", "№ госреестра", "Дата поверки", "Следующая поверка"},
		{"1", "Манометр МП-100", "МП", "12345", "5051-75", "15.01.2026", "15.01.2027"},
		{"2", "Термометр ТЛ-4", "ТЛ", "67890", "303-91", "01.03.2026", ""},
		{"", "Итого", "", "", "", "", ""},
	})

	result, err := importer.Import(context.Background(), 7, file)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 0, result.Errors)
	require.Len(t, repo.upserted, 2)

	first := repo.upserted[0]
	assert.Equal(t, uint64(7), first.UserID)
	assert.Equal(t, "Манометр МП-100", first.Name)
	assert.Equal(t, "12345", first.SerialNumber.String)
	assert.Equal(t, "5051-75", first.RegistryNumber.String)
	require.True(t, first.NextVerification.Valid)
	assert.Equal(t, 2027, first.NextVerification.Time.Year())

	// Дата следующей поверки не задана — считается от даты поверки плюс интервал.
	second := repo.upserted[1]
	require.True(t, second.NextVerification.Valid)
	assert.Equal(t, second.VerificationDate.Time.AddDate(0, constants.DefaultVerificationIntervalMonths, 0), second.NextVerification.Time)
}

func TestImport_NoHeaderFails(t *testing.T) {
	repo := &fakeEquipmentRepo{}
	importer := NewEquipmentImporter(repo, &fakeTxManager{}, zap.NewNop())

	file := buildImportFile(t, [][]interface{}{
		{"просто текст", "без шапки"},
		{"ещё строка"},
	})

	_, err := importer.Import(context.Background(), 7, file)
	require.Error(t, err)
	assert.Empty(t, repo.upserted)
}

func TestImport_BadDateCountsAsError(t *testing.T) {
	repo := &fakeEquipmentRepo{}
	importer := NewEquipmentImporter(repo, &fakeTxManager{}, zap.NewNop())

	file := buildImportFile(t, [][]interface{}{
		{"Наименование", "Заводской номер", "Дата поверки"},
		{"Манометр", "111", "не дата"},
		{"Весы", "222", "10.02.2026"},
	})

	result, err := importer.Import(context.Background(), 7, file)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Errors)
	assert.Equal(t, 1, result.Created)
	require.Len(t, repo.upserted, 1)
	assert.Equal(t, "Весы", repo.upserted[0].Name)
}

func TestImport_StatusClassifiedOnWrite(t *testing.T) {
	repo := &fakeEquipmentRepo{}
	importer := NewEquipmentImporter(repo, &fakeTxManager{}, zap.NewNop())

	file := buildImportFile(t, [][]interface{}{
		{"Наименование", "Заводской номер", "Следующая поверка"},
		{"Просроченный", "1", "01.01.2020"},
	})

	_, err := importer.Import(context.Background(), 7, file)
	require.NoError(t, err)
	require.Len(t, repo.upserted, 1)
	assert.Equal(t, constants.EquipmentStatusExpired, repo.upserted[0].Status)
}
