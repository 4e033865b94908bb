package db

import (
	"strings"
	"testing"
)

func TestStatementsFor(t *testing.T) {
	tests := []struct {
		driver   string
		contains string
		excludes string
	}{
		{driver: "postgres", contains: "JSONB", excludes: "ENGINE=InnoDB"},
		{driver: "mysql", contains: "ENGINE=InnoDB", excludes: "uuid_generate_v4"},
	}

	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			joined := strings.Join(statementsFor(tt.driver), "\n")
			if !strings.Contains(joined, tt.contains) {
				t.Errorf("%s migrations should contain %q", tt.driver, tt.contains)
			}
			if strings.Contains(joined, tt.excludes) {
				t.Errorf("%s migrations should not contain %q", tt.driver, tt.excludes)
			}
			for _, table := range []string{"anpr_plates", "anpr_plate_reads", "anpr_lists", "anpr_list_items"} {
				if !strings.Contains(joined, "CREATE TABLE IF NOT EXISTS "+table+" (") {
					t.Errorf("%s migrations do not create %s", tt.driver, table)
				}
			}
		})
	}
}
