package bvt

import (
	"strings"
	"testing"
)

func TestParseCases(t *testing.T) {
	data := strings.Join([]string{
		"대분류,중분류,소분류,확인 내용,결과",
		"상점,메뉴,,상점 버튼 터치 시 메뉴 이동,PASS",
		"전투,,,전투 시작 버튼 터치,FAIL",
		",,,," + "",
	}, "\n")

	cases, err := ParseCases(strings.NewReader(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(cases) != 2 {
		t.Fatalf("got %d cases, want 2", len(cases))
	}
	first := cases[0]
	if first.Category1 != "상점" || first.Category2 != "메뉴" || first.Category3 != "" {
		t.Errorf("categories = %q/%q/%q", first.Category1, first.Category2, first.Category3)
	}
	if first.Check != "상점 버튼 터치 시 메뉴 이동" {
		t.Errorf("check = %q", first.Check)
	}
	if first.Result != "PASS" {
		t.Errorf("result = %q, want PASS", first.Result)
	}
}

func TestParseCasesNoHeader(t *testing.T) {
	data := "상점,,,상점 버튼 터치,\n"
	cases, err := ParseCases(strings.NewReader(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(cases) != 1 || cases[0].Check != "상점 버튼 터치" {
		t.Errorf("cases = %+v, want the single data row kept", cases)
	}
}

func TestParseCasesSkipsShortRows(t *testing.T) {
	data := "상점,메뉴\n상점,메뉴,,정상 동작 확인,PASS\n"
	cases, err := ParseCases(strings.NewReader(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(cases) != 1 {
		t.Errorf("got %d cases, want 1 (short row skipped)", len(cases))
	}
}

func TestLoadCasesMissingFile(t *testing.T) {
	if _, err := LoadCases("/nonexistent/bvt.csv"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGeneratePlayTests(t *testing.T) {
	results := []MatchResult{
		{
			Case:            Case{Category1: "상점", Check: "상점 버튼 터치 시 메뉴 이동"},
			MatchedTestCase: "shop_menu_flow",
			ConfidenceScore: 0.82,
			ActionRange:     &ActionRange{StartIndex: 1, EndIndex: 2},
		},
		{
			Case:            Case{Check: "전투 시작"},
			MatchedTestCase: "battle_flow",
			ConfidenceScore: 0.4,
		},
		{Case: Case{Check: "미매칭"}},
	}

	tests := GeneratePlayTests(results)

	if len(tests) != 1 {
		t.Fatalf("got %d play tests, want 1 (only the high-confidence match)", len(tests))
	}
	pt := tests[0]
	if pt.TestCase != "shop_menu_flow" {
		t.Errorf("test case = %q, want shop_menu_flow", pt.TestCase)
	}
	if pt.ActionRange == nil || pt.ActionRange.StartIndex != 1 {
		t.Errorf("action range = %+v, want [1, 2]", pt.ActionRange)
	}
	if pt.Confidence != 0.82 {
		t.Errorf("confidence = %v, want 0.82", pt.Confidence)
	}
	if pt.GeneratedAt.IsZero() {
		t.Error("generated_at not set")
	}
}
