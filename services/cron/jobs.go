package cron

import (
	"encoding/json"
	"fmt"
	"log"
	"time"
)

// orphanScan pairs a child table with the parent table its reference
// points into.
type orphanScan struct {
	childTable  string
	fkColumn    string
	parentTable string
}

var orphanScans = []orphanScan{
	{"states", "country_id", "countries"},
	{"universities", "state_id", "states"},
	{"colleges", "university_id", "universities"},
	{"buildings", "college_id", "colleges"},
	{"rooms", "building_id", "buildings"},
}

// ReportOrphanedReferences counts child records referencing a parent id
// that no longer exists. Read-only: deleting a parent intentionally
// does not cascade, so this job only makes the resulting orphans
// visible to operators.
func (m *CronManager) ReportOrphanedReferences() {
	jobName := "report_orphaned_references"
	startedAt := time.Now()

	counts := make(map[string]int64, len(orphanScans))
	var total int64

	for _, scan := range orphanScans {
		var n int64
		query := fmt.Sprintf(
			"SELECT COUNT(*) FROM %s c WHERE c.%s IS NOT NULL AND NOT EXISTS (SELECT 1 FROM %s p WHERE p.id = c.%s)",
			scan.childTable, scan.fkColumn, scan.parentTable, scan.fkColumn,
		)
		if err := m.db.Raw(query).Scan(&n).Error; err != nil {
			m.logJobError(jobName, startedAt, fmt.Errorf("scan %s: %w", scan.childTable, err))
			return
		}
		counts[scan.childTable] = n
		total += n
	}

	metadata, err := json.Marshal(counts)
	if err != nil {
		m.logJobError(jobName, startedAt, fmt.Errorf("encode metadata: %w", err))
		return
	}

	message := "No orphaned references"
	if total > 0 {
		message = fmt.Sprintf("Found %d orphaned references", total)
		log.Printf("[CRON] %s: %s", jobName, message)
	}

	m.logJobComplete(jobName, message, startedAt, metadata)
}
