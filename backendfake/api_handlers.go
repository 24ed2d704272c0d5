package backendfake

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/uniassist/api"
	"github.com/jrsteele09/uniassist/internal/utils"
)

const (
	maxUploadSize = 10 << 20

	GroupNumberMin = 100000
	GroupNumberMax = 999999
)

// Chat modes the backend answers in
var chatModes = map[string]struct{}{
	"assistant": {},
	"knowledge": {},
	"schedule":  {},
}

func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, found := s.data.user(claimsFrom(r).Subject)
		if !found {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

func (s *Server) UpdateGroupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in api.GroupUpdate
		if !decodeJSON(w, r, &in) {
			return
		}
		if in.GroupNumber != nil && (*in.GroupNumber < GroupNumberMin || *in.GroupNumber > GroupNumberMax) {
			writeError(w, http.StatusBadRequest, "groupNumber must be a 6-digit number")
			return
		}

		user, found := s.data.setGroup(claimsFrom(r).Subject, in.GroupNumber)
		if !found {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		s.log.Info().Str("email", user.Email).Int("group", utils.Value(user.GroupNumber)).Msg("Group updated")
		writeJSON(w, http.StatusOK, user)
	}
}

func (s *Server) ChatHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in api.ChatRequest
		if !decodeJSON(w, r, &in) {
			return
		}
		if _, ok := chatModes[in.Mode]; !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown chat mode %q", in.Mode))
			return
		}
		if strings.TrimSpace(in.Message) == "" {
			writeError(w, http.StatusBadRequest, "message is required")
			return
		}

		email := claimsFrom(r).Subject
		var reply api.ChatReply
		switch in.Mode {
		case "knowledge":
			reply.Sources = s.data.searchFiles(email, in.Message)
			if len(reply.Sources) == 0 {
				reply.Answer = "I could not find anything about that in your files."
			} else {
				reply.Answer = fmt.Sprintf("Your files mention this in %s.", strings.Join(reply.Sources, ", "))
			}
		case "schedule":
			var group *int
			if user, found := s.data.user(email); found {
				group = user.GroupNumber
			}
			day := timetable(group, time.Now().UTC())
			if group == nil {
				reply.Answer = "Set your group number to see your timetable."
			} else {
				reply.Answer = fmt.Sprintf("You have %d lessons today.", len(day.Lessons))
			}
		default:
			reply.Answer = "You said: " + in.Message
		}
		writeJSON(w, http.StatusOK, reply)
	}
}

func (s *Server) ListFilesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.data.listFiles(claimsFrom(r).Subject))
	}
}

func (s *Server) UploadFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "multipart field \"file\" is required")
			return
		}
		defer file.Close()

		content, err := io.ReadAll(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		contentType := header.Header.Get("Content-Type")
		if contentType == "" {
			contentType = http.DetectContentType(content)
		}

		f := s.data.addFile(claimsFrom(r).Subject, header.Filename, contentType, content)
		writeJSON(w, http.StatusCreated, f)
	}
}

func (s *Server) DeleteFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.data.deleteFile(claimsFrom(r).Subject, r.PathValue("id")) {
			writeError(w, http.StatusNotFound, "file not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) ScheduleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		date := time.Now().UTC()
		if q := r.URL.Query().Get("date"); q != "" {
			parsed, err := time.Parse(time.DateOnly, q)
			if err != nil {
				writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
				return
			}
			date = parsed
		}

		user, found := s.data.user(claimsFrom(r).Subject)
		if !found {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeJSON(w, http.StatusOK, timetable(user.GroupNumber, date))
	}
}

func (s *Server) ListTasksHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.data.listTasks(claimsFrom(r).Subject))
	}
}

func (s *Server) CreateTaskHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in api.Task
		if !decodeJSON(w, r, &in) {
			return
		}
		if strings.TrimSpace(in.Title) == "" {
			writeError(w, http.StatusBadRequest, "title is required")
			return
		}
		writeJSON(w, http.StatusCreated, s.data.addTask(claimsFrom(r).Subject, in))
	}
}

func (s *Server) UpdateTaskHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in api.Task
		if !decodeJSON(w, r, &in) {
			return
		}
		if strings.TrimSpace(in.Title) == "" {
			writeError(w, http.StatusBadRequest, "title is required")
			return
		}
		in.ID = r.PathValue("id")
		if !s.data.updateTask(claimsFrom(r).Subject, in) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		writeJSON(w, http.StatusOK, in)
	}
}

func (s *Server) DeleteTaskHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.data.deleteTask(claimsFrom(r).Subject, r.PathValue("id")) {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
