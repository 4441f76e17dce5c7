// Package export serializes a decoded session into tabular text. The
// export reads the session read-only and ignores the cutoff entirely.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/danmuck/seikoctl/internal/session"
)

// WriteCSV writes one row per measurement with its status, so corrected
// and outlier points stay distinguishable downstream. Corrected values
// appear inline as plain numbers; a re-decode of the exported values is
// an error-free capture. The value column is headed by the capture's
// rate-mode label, as the device tool printed it.
func WriteCSV(w io.Writer, s *session.Session) error {
	cw := csv.NewWriter(w)

	header := []string{"index", "channel", s.RateMode.String(), "status"}
	if s.Timestamped {
		header = []string{"index", "timestamp", "channel", s.RateMode.String(), "status"}
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, m := range s.Measurements {
		row := []string{
			strconv.Itoa(m.SequenceIndex),
			m.Channel.String(),
			strconv.FormatFloat(m.Value, 'f', 3, 64),
			m.Status.String(),
		}
		if s.Timestamped {
			row = []string{
				strconv.Itoa(m.SequenceIndex),
				m.Timestamp,
				m.Channel.String(),
				strconv.FormatFloat(m.Value, 'f', 3, 64),
				m.Status.String(),
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
