package logging

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/bytedance/sonic"

	"go.dw1.io/x/exp/rendersec"
)

var api = sonic.ConfigStd

// Event is one sandbox diagnostic as written by [JSON].
type Event struct {
	Time     time.Time `json:"time"`
	Message  string    `json:"msg"`
	Error    string    `json:"error"`
	Category string    `json:"category,omitempty"`
	Detail   string    `json:"detail,omitempty"`
}

type jsonLogger struct {
	mu  sync.Mutex
	enc sonic.Encoder
	now func() time.Time
}

// JSON writes every sandbox event to w as one JSON object per line, suited
// to an append-only audit file. Write errors are dropped.
func JSON(w io.Writer) rendersec.Logger {
	return &jsonLogger{enc: api.NewEncoder(w), now: time.Now}
}

func (j *jsonLogger) Warn(msg string, err error) {
	ev := Event{Time: j.now().UTC(), Message: msg}
	if err != nil {
		ev.Error = err.Error()
	}

	var denied *rendersec.DeniedError
	if errors.As(err, &denied) {
		ev.Category = denied.Category.String()
		ev.Detail = denied.Detail
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	_ = j.enc.Encode(ev)
}

// DecodeEvents reads events written by [JSON] from r.
func DecodeEvents(r io.Reader) ([]Event, error) {
	dec := api.NewDecoder(r)

	var events []Event
	for {
		var ev Event
		if err := dec.Decode(&ev); err != nil {
			if errors.Is(err, io.EOF) {
				return events, nil
			}

			return events, err
		}

		events = append(events, ev)
	}
}
