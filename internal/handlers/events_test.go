package handlers_test

import (
	"bufio"
	"net/http"
	"net/http/httptest"
	"strings"

	"task-tracker/internal/notify"
)

// nextEvent reads one SSE frame and returns its event name and data.
func nextEvent(r *bufio.Reader) (string, string, error) {
	var name, data string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return "", "", err
		}
		line = strings.TrimRight(line, "\r\n")
		switch {
		case line == "":
			if name != "" || data != "" {
				return name, data, nil
			}
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		}
	}
}

func (s *HandlerSuite) TestEventStream() {
	server := httptest.NewServer(s.router)
	defer server.Close()

	resp, err := http.Get(server.URL + "/events")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)
	s.Contains(resp.Header.Get("Content-Type"), "text/event-stream")

	reader := bufio.NewReader(resp.Body)
	name, _, err := nextEvent(reader)
	s.Require().NoError(err)
	s.Equal("connected", name)
	s.Equal(1, s.hub.SubscriberCount())

	s.hub.Publish(notify.Event{
		Type:    notify.EventAttendanceUpdated,
		Payload: notify.AttendancePayload{Email: "dev@example.com", Attendance: "present"},
	})

	name, data, err := nextEvent(reader)
	s.Require().NoError(err)
	s.Equal(notify.EventAttendanceUpdated, name)
	s.JSONEq(`{"email":"dev@example.com","attendance":"present"}`, data)
}
