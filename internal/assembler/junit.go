package assembler

import (
	"encoding/xml"
	"fmt"
	"time"

	"git.home.luguber.info/inful/gallerygen/internal/checksum"
	"git.home.luguber.info/inful/gallerygen/internal/gallery"
)

type junitSuite struct {
	XMLName  xml.Name    `xml:"testsuite"`
	Name     string      `xml:"name,attr"`
	Tests    int         `xml:"tests,attr"`
	Failures int         `xml:"failures,attr"`
	Skipped  int         `xml:"skipped,attr"`
	Time     string      `xml:"time,attr"`
	Cases    []junitCase `xml:"testcase"`
}

type junitCase struct {
	Name    string        `xml:"name,attr"`
	File    string        `xml:"file,attr"`
	Time    string        `xml:"time,attr"`
	Failure *junitFailure `xml:"failure,omitempty"`
	Skipped *struct{}     `xml:"skipped,omitempty"`
}

type junitFailure struct {
	Message string `xml:"message,attr"`
	Body    string `xml:",chardata"`
}

// writeJUnit reports one testcase per script: unexpected failures become
// failures, stale-skipped scripts become skips.
func writeJUnit(path string, results []*gallery.RunResult, buildTime time.Duration) error {
	suite := junitSuite{
		Name: "gallerygen",
		Time: fmt.Sprintf("%.3f", buildTime.Seconds()),
	}
	for _, r := range results {
		c := junitCase{
			Name: r.Script.Stem(),
			File: r.Script.SrcFile,
			Time: fmt.Sprintf("%.3f", r.ExecTime.Seconds()),
		}
		switch {
		case r.Stale:
			suite.Skipped++
			c.Skipped = &struct{}{}
		case r.Failed && !r.FailedAsExpected:
			suite.Failures++
			c.Failure = &junitFailure{
				Message: "example failed",
				Body:    r.Traceback,
			}
		}
		suite.Tests++
		suite.Cases = append(suite.Cases, c)
	}

	data, err := xml.MarshalIndent(suite, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal junit report: %w", err)
	}
	data = append([]byte(xml.Header), data...)
	data = append(data, '\n')
	if _, err := checksum.WriteFileIfChanged(path, data); err != nil {
		return fmt.Errorf("write junit report: %w", err)
	}
	return nil
}
