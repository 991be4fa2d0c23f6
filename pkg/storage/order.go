package storage

import (
	"sort"

	"github.com/felixgeelhaar/laborboard/pkg/domain/labor"
)

// Every backend lists employees by check-in time and centers by name.

func sortEmployees(list []labor.Employee) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].StartTime.Equal(list[j].StartTime) {
			return list[i].StartTime.Before(list[j].StartTime)
		}
		return list[i].ID < list[j].ID
	})
}

func sortCenters(list []labor.RevenueCenter) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Name < list[j].Name
	})
}
