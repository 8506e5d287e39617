package posting

import (
	"encoding/json"
	"os"
	"strings"
)

// ReportByCompany groups postings by company for a quick review before a run.
func ReportByCompany(postings []RawPosting) map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, p := range postings {
		key := strings.TrimSpace(p.Company)
		if key == "" {
			key = "unknown"
		}
		report[key] = append(report[key], map[string]string{
			"id":       p.ID,
			"title":    p.Title,
			"location": p.Location,
			"link":     p.Link,
		})
	}
	return report
}

// DumpToTmpFile writes postings as JSON lines to a temporary file. The file can
// be fed back through FileSource.
func DumpToTmpFile(postings []RawPosting) (string, error) {
	file, err := os.CreateTemp("", "postings_*.jsonl")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	for _, p := range postings {
		if err := enc.Encode(p); err != nil {
			return "", err
		}
	}
	return file.Name(), nil
}
