package backendfake

import (
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/uniassist/api"
	"github.com/jrsteele09/uniassist/internal/utils"
	"github.com/jrsteele09/uniassist/sessions"
)

type storedFile struct {
	api.File
	content []byte
}

// memoryData holds every user's profile, files and tasks.
type memoryData struct {
	mu    sync.RWMutex
	users map[string]*sessions.UserProfile // by email
	files map[string][]storedFile
	tasks map[string][]api.Task
}

func newMemoryData() *memoryData {
	return &memoryData{
		users: make(map[string]*sessions.UserProfile),
		files: make(map[string][]storedFile),
		tasks: make(map[string][]api.Task),
	}
}

func copyProfile(u *sessions.UserProfile) *sessions.UserProfile {
	c := *u
	c.GroupNumber = utils.Copy(u.GroupNumber)
	return &c
}

// upsertUser registers email or refreshes its display fields, keeping the group.
func (d *memoryData) upsertUser(email, name, picture string) *sessions.UserProfile {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[email]
	if !ok {
		u = &sessions.UserProfile{Email: email}
		d.users[email] = u
	}
	if name != "" {
		u.FullName = name
	}
	if picture != "" {
		u.PictureURL = picture
	}
	return copyProfile(u)
}

func (d *memoryData) user(email string) (*sessions.UserProfile, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.users[email]
	if !ok {
		return nil, false
	}
	return copyProfile(u), true
}

func (d *memoryData) setGroup(email string, group *int) (*sessions.UserProfile, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[email]
	if !ok {
		return nil, false
	}
	u.GroupNumber = utils.Copy(group)
	return copyProfile(u), true
}

func (d *memoryData) listFiles(email string) []api.File {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]api.File, 0, len(d.files[email]))
	for _, f := range d.files[email] {
		out = append(out, f.File)
	}
	return out
}

func (d *memoryData) addFile(email, name, contentType string, content []byte) api.File {
	d.mu.Lock()
	defer d.mu.Unlock()
	f := storedFile{
		File: api.File{
			ID:          uuid.NewString(),
			Name:        name,
			Size:        int64(len(content)),
			ContentType: contentType,
			UploadedAt:  time.Now().UTC(),
		},
		content: content,
	}
	d.files[email] = append(d.files[email], f)
	return f.File
}

func (d *memoryData) deleteFile(email, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	files := d.files[email]
	i := slices.IndexFunc(files, func(f storedFile) bool { return f.ID == id })
	if i < 0 {
		return false
	}
	d.files[email] = slices.Delete(files, i, i+1)
	return true
}

// searchFiles returns the names of files whose name or text mentions any
// word of query, best match first.
func (d *memoryData) searchFiles(email, query string) []string {
	words := strings.Fields(strings.ToLower(query))
	d.mu.RLock()
	defer d.mu.RUnlock()

	type hit struct {
		name  string
		score int
	}
	var hits []hit
	for _, f := range d.files[email] {
		text := strings.ToLower(f.Name + " " + string(f.content))
		score := 0
		for _, w := range words {
			if len(w) > 2 && strings.Contains(text, w) {
				score++
			}
		}
		if score > 0 {
			hits = append(hits, hit{name: f.Name, score: score})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })

	names := make([]string, 0, len(hits))
	for _, h := range hits {
		names = append(names, h.name)
	}
	return names
}

func (d *memoryData) listTasks(email string) []api.Task {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append(make([]api.Task, 0, len(d.tasks[email])), d.tasks[email]...)
}

func (d *memoryData) addTask(email string, t api.Task) api.Task {
	d.mu.Lock()
	defer d.mu.Unlock()
	t.ID = uuid.NewString()
	d.tasks[email] = append(d.tasks[email], t)
	return t
}

func (d *memoryData) updateTask(email string, t api.Task) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	tasks := d.tasks[email]
	i := slices.IndexFunc(tasks, func(x api.Task) bool { return x.ID == t.ID })
	if i < 0 {
		return false
	}
	tasks[i] = t
	return true
}

func (d *memoryData) deleteTask(email, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	tasks := d.tasks[email]
	i := slices.IndexFunc(tasks, func(x api.Task) bool { return x.ID == id })
	if i < 0 {
		return false
	}
	d.tasks[email] = slices.Delete(tasks, i, i+1)
	return true
}
