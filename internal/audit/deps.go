package audit

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

const npmAuditSource = "npm audit"

// DependencyAudit holds the counts read from `npm audit --json`.
type DependencyAudit struct {
	Vulnerabilities int
	Prod            int
	Total           int
}

type npmAuditResult struct {
	Metadata struct {
		Vulnerabilities struct {
			Total *int `json:"total"`
		} `json:"vulnerabilities"`
		Dependencies struct {
			Prod  *int `json:"prod"`
			Total *int `json:"total"`
		} `json:"dependencies"`
	} `json:"metadata"`
}

// ParseDependencyAudit extracts the vulnerability and dependency counts. The
// total dependency count is only required when withTotal is set.
func ParseDependencyAudit(data []byte, withTotal bool) (DependencyAudit, error) {
	var res npmAuditResult
	if err := json.Unmarshal(data, &res); err != nil {
		return DependencyAudit{}, &ReportExtractionError{Source: npmAuditSource, Err: err}
	}

	meta := res.Metadata
	if meta.Vulnerabilities.Total == nil {
		return DependencyAudit{}, missing(npmAuditSource, "metadata.vulnerabilities.total")
	}
	if meta.Dependencies.Prod == nil {
		return DependencyAudit{}, missing(npmAuditSource, "metadata.dependencies.prod")
	}

	out := DependencyAudit{
		Vulnerabilities: *meta.Vulnerabilities.Total,
		Prod:            *meta.Dependencies.Prod,
	}
	if withTotal {
		if meta.Dependencies.Total == nil {
			return DependencyAudit{}, missing(npmAuditSource, "metadata.dependencies.total")
		}
		out.Total = *meta.Dependencies.Total
	}
	return out, nil
}

// installDuration matches the elapsed time npm prints at the end of an
// install, e.g. "added 312 packages in 12s".
var installDuration = regexp.MustCompile(`\d+s`)

// ParseInstallDuration returns the first "<digits>s" token of an install log.
func ParseInstallDuration(output string) (string, error) {
	match := installDuration.FindString(output)
	if match == "" {
		return "", &ReportExtractionError{
			Source: "npm ci",
			Field:  "install duration",
			Err:    errors.New("no duration found in output"),
		}
	}
	return match, nil
}

// ParseDirSize returns the leading size token of `du -sh <dir>` output.
func ParseDirSize(output string) (string, error) {
	fields := strings.Fields(output)
	if len(fields) == 0 {
		return "", &ReportExtractionError{
			Source: "du",
			Field:  "size",
			Err:    errors.New("empty output"),
		}
	}
	return fields[0], nil
}
