package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DashboardRepositoryInterface interface {
	CountEquipmentByStatus(ctx context.Context) (map[string]uint64, error)
	CountEquipment(ctx context.Context) (uint64, error)
}

type DashboardRepository struct {
	storage *pgxpool.Pool
}

func NewDashboardRepository(storage *pgxpool.Pool) DashboardRepositoryInterface {
	return &DashboardRepository{storage: storage}
}

func (r *DashboardRepository) CountEquipmentByStatus(ctx context.Context) (map[string]uint64, error) {
	rows, err := r.storage.Query(ctx, fmt.Sprintf("SELECT status, COUNT(*) FROM %s GROUP BY status", equipmentTable))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]uint64)
	for rows.Next() {
		var status string
		var count uint64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *DashboardRepository) CountEquipment(ctx context.Context) (uint64, error) {
	var total uint64
	err := r.storage.QueryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", equipmentTable)).Scan(&total)
	return total, err
}
