package main

import (
	"fmt"
	"os"

	"github.com/qaforge/replaykit/pkg/action"
)

// handleValidate implements `replaykit validate <testcase.json>`.
func handleValidate() error {
	if len(os.Args) < 3 {
		fmt.Println("Usage: replaykit validate <testcase.json>")
		return nil
	}

	path := os.Args[2]
	tc, err := action.LoadTestCase(path)
	if err != nil {
		return fmt.Errorf("load test case: %w", err)
	}

	vr := action.ValidateTestCase(tc)
	if !vr.Valid() {
		return fmt.Errorf("%s is invalid:\n%s", path, vr.Error())
	}

	enriched := 0
	for _, a := range tc.Actions {
		if a.Semantic != nil {
			enriched++
		}
	}
	fmt.Printf("%s: ok (%d actions, %d with semantic info)\n", path, len(tc.Actions), enriched)
	return nil
}
