package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"

	"github.com/spboyer/migbench/internal/config"
	"github.com/spboyer/migbench/internal/models"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite maps to one run.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase maps to one migration task.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

// JUnitFailure is a task that scored below the threshold.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
}

// JUnitSkipped marks a task without a prediction.
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// JUnitOptions tunes the conversion.
type JUnitOptions struct {
	// Threshold is the lowest passing score. Zero passes every scored task.
	Threshold float64
	Timestamp time.Time
}

// ConvertToJUnit maps every scored task to a test case. Tasks with a missing
// prediction are skipped; tasks below opts.Threshold fail.
func ConvertToJUnit(report *models.ScoreReport, cfg *config.RunConfig, opts JUnitOptions) *JUnitTestSuites {
	if opts.Timestamp.IsZero() {
		opts.Timestamp = time.Now().UTC()
	}

	suite := JUnitTestSuite{
		Name:      fmt.Sprintf("%s/%s/%s", cfg.ClientFamily, cfg.ModelVersion, cfg.PromptTemplate),
		Tests:     len(report.Tasks),
		Timestamp: opts.Timestamp.Format(time.RFC3339),
		Properties: []JUnitProperty{
			{Name: "client_family", Value: cfg.ClientFamily},
			{Name: "model_version", Value: cfg.ModelVersion},
			{Name: "prompt_template", Value: cfg.PromptTemplate},
			{Name: "language", Value: cfg.Language},
			{Name: "threshold", Value: formatScore(opts.Threshold)},
		},
	}

	for _, ts := range report.Tasks {
		tc := JUnitTestCase{
			Name:      ts.TaskID,
			Classname: typeLabel(ts.MigrationType),
		}
		switch {
		case ts.Missing():
			tc.Skipped = &JUnitSkipped{Message: "prediction not found"}
			suite.Skipped++
		case *ts.Score < opts.Threshold:
			tc.Failure = &JUnitFailure{
				Message: fmt.Sprintf("%s: score=%.4f < %.4f", ts.TaskID, *ts.Score, opts.Threshold),
				Type:    "BelowThreshold",
			}
			suite.Failures++
		}
		suite.TestCases = append(suite.TestCases, tc)
	}

	return &JUnitTestSuites{
		Tests:      suite.Tests,
		Failures:   suite.Failures,
		TestSuites: []JUnitTestSuite{suite},
	}
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(report *models.ScoreReport, cfg *config.RunConfig, opts JUnitOptions, path string) error {
	suites := ConvertToJUnit(report, cfg, opts)

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}
