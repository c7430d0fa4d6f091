package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/qaforge/replaykit/pkg/action"
	"github.com/qaforge/replaykit/pkg/verify"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "replaykit.db")
	s, err := NewBoltStore(path)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveGetTestCase(t *testing.T) {
	s := newTestStore(t)

	tc := action.TestCase{
		Name:        "shop_menu_flow",
		Description: "상점 진입 후 메뉴 이동",
		Actions: []action.SemanticAction{
			{Kind: action.Click, X: 100, Y: 200, Description: "상점 버튼 터치"},
		},
	}
	if err := s.SaveTestCase(tc); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.GetTestCase("shop_menu_flow")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != tc.Name || got.Description != tc.Description {
		t.Errorf("got %q/%q, want %q/%q", got.Name, got.Description, tc.Name, tc.Description)
	}
	if len(got.Actions) != 1 || got.Actions[0].X != 100 {
		t.Errorf("actions = %+v, want the saved click", got.Actions)
	}
}

func TestGetMissingTestCase(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetTestCase("nope"); err == nil {
		t.Error("expected error for missing test case")
	}
}

func TestSaveTestCaseRequiresName(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveTestCase(action.TestCase{}); err == nil {
		t.Error("expected error for unnamed test case")
	}
}

func TestListAndDeleteTestCases(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"b_case", "a_case"} {
		if err := s.SaveTestCase(action.TestCase{Name: name}); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
	}

	names, err := s.ListTestCases()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 2 || names[0] != "a_case" || names[1] != "b_case" {
		t.Errorf("names = %v, want [a_case b_case] in key order", names)
	}

	if err := s.DeleteTestCase("a_case"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	names, _ = s.ListTestCases()
	if len(names) != 1 || names[0] != "b_case" {
		t.Errorf("names after delete = %v, want [b_case]", names)
	}

	// Deleting again is not an error.
	if err := s.DeleteTestCase("a_case"); err != nil {
		t.Errorf("repeat delete: %v", err)
	}
}

func TestReportsAccumulate(t *testing.T) {
	s := newTestStore(t)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		report := verify.Report{
			TestCase:    "shop_menu_flow",
			GeneratedAt: base.Add(time.Duration(i) * time.Minute),
			Failed:      i,
		}
		if err := s.SaveReport(report); err != nil {
			t.Fatalf("save report %d: %v", i, err)
		}
	}
	if err := s.SaveReport(verify.Report{TestCase: "other", GeneratedAt: base}); err != nil {
		t.Fatalf("save other report: %v", err)
	}

	reports, err := s.ListReports("shop_menu_flow")
	if err != nil {
		t.Fatalf("list reports: %v", err)
	}
	if len(reports) != 3 {
		t.Fatalf("got %d reports, want 3", len(reports))
	}
	for i, report := range reports {
		if report.Failed != i {
			t.Errorf("report %d has Failed=%d, want oldest first", i, report.Failed)
		}
	}
}

func TestSaveReportRequiresTestCase(t *testing.T) {
	s := newTestStore(t)
	if err := s.SaveReport(verify.Report{}); err == nil {
		t.Error("expected error for report without test case name")
	}
}
