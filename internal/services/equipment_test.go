package services

import (
	"testing"
	"time"

	"metrology-portal/pkg/constants"

	"github.com/stretchr/testify/assert"
)

func TestClassifyStatus(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		next     *time.Time
		expected string
	}{
		{
			name:     "без даты поверки — active",
			next:     nil,
			expected: constants.EquipmentStatusActive,
		},
		{
			name:     "дата в прошлом — expired",
			next:     timePtr(now.AddDate(0, 0, -1)),
			expected: constants.EquipmentStatusExpired,
		},
		{
			name:     "секунда назад — expired",
			next:     timePtr(now.Add(-time.Second)),
			expected: constants.EquipmentStatusExpired,
		},
		{
			name:     "ровно сейчас — pending, не expired",
			next:     timePtr(now),
			expected: constants.EquipmentStatusPending,
		},
		{
			name:     "завтра — pending",
			next:     timePtr(now.AddDate(0, 0, 1)),
			expected: constants.EquipmentStatusPending,
		},
		{
			name:     "13 дней вперед — pending",
			next:     timePtr(now.AddDate(0, 0, 13)),
			expected: constants.EquipmentStatusPending,
		},
		{
			name:     "граница окна, ровно 14 дней — active",
			next:     timePtr(now.AddDate(0, 0, 14)),
			expected: constants.EquipmentStatusActive,
		},
		{
			name:     "далёкое будущее — active",
			next:     timePtr(now.AddDate(1, 0, 0)),
			expected: constants.EquipmentStatusActive,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ClassifyStatus(tc.next, now))
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }
