package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/kilianp07/fleethealth/core/aggregate"
	"github.com/kilianp07/fleethealth/core/model"
)

func sample() Report {
	eff := 5.25
	last := "3 days ago / 12.50 kWh"
	vs := []model.Vehicle{
		{ID: "A", CarType: "SEDAN", FinalScore: 82.5, Grade: model.GradeExcellent, Efficiency: &eff, LastCharge: &last},
		{ID: "B", CarType: "SUV", FinalScore: 41, Grade: model.GradeBad},
	}
	return Report{Vehicles: vs, Summary: aggregate.Summarize(vs)}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "csv", sample()); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(rows))
	}
	if rows[1][4] != "5.25" || rows[1][5] != "3 days ago / 12.50 kWh" {
		t.Fatalf("unexpected row %v", rows[1])
	}
	if rows[2][4] != "" || rows[2][3] != "bad" {
		t.Fatalf("missing values should be empty: %v", rows[2])
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, "json", sample()); err != nil {
		t.Fatalf("write: %v", err)
	}
	var out Report
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Summary.Total != 2 || out.Summary.Excellent != 1 || out.FleetScore != nil {
		t.Fatalf("unexpected report %+v", out)
	}
}

func TestWriteHTML(t *testing.T) {
	r := sample()
	r.FleetScore = &model.ScoreBreakdown{FinalScore: 60, Scores: model.FactorScores{Efficiency: 70, Temperature: 50}}
	var buf bytes.Buffer
	if err := Write(&buf, "html", r); err != nil {
		t.Fatalf("write: %v", err)
	}
	html := buf.String()
	for _, want := range []string{"Battery score by vehicle", "Grade distribution", "Fleet factor scores"} {
		if !strings.Contains(html, want) {
			t.Errorf("missing %q in page", want)
		}
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, "xlsx", sample()); err == nil {
		t.Fatalf("expected error")
	}
}
