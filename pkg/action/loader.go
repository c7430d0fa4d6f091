package action

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadTestCase reads a recorded test-case JSON file from disk.
func LoadTestCase(path string) (TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return TestCase{}, fmt.Errorf("read test case %s: %w", path, err)
	}
	return ParseTestCase(data)
}

// ParseTestCase parses test-case JSON. Optional fields absent from legacy
// recordings (semantic_info, screen_transition, screenshots) stay nil/empty.
func ParseTestCase(data []byte) (TestCase, error) {
	var tc TestCase
	if err := json.Unmarshal(data, &tc); err != nil {
		return TestCase{}, fmt.Errorf("parse test case: %w", err)
	}
	return tc, nil
}

// SaveTestCase writes a test case back to disk as indented JSON.
func SaveTestCase(path string, tc TestCase) error {
	data, err := json.MarshalIndent(tc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal test case %s: %w", tc.Name, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write test case %s: %w", path, err)
	}
	return nil
}
