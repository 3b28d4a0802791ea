package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/yourname/leettrack/internal"
)

const (
	problemsFile = "problems.json"
	goalsFile    = "goals.json"
	usersFile    = "users.json"
	settingsFile = "settings.json"
)

type FileStorage struct {
	problems      map[int64]*internal.Problem   // id -> Problem
	userProblems  map[int64][]*internal.Problem // userID -> problems (SolvedAt descending)
	goals         map[int64]*internal.Goal      // id -> Goal
	users         map[int64]*internal.User
	settings      map[int64]*internal.UserSettings // userID -> settings
	nextProblemID int64
	nextGoalID    int64
	mu            sync.RWMutex
	dir           string
	savers        map[string]*debouncedSaver
	shutdownChan  chan struct{}
	closeOnce     sync.Once
	workers       sync.WaitGroup
	saveDelay     time.Duration
	logger        internal.Logger
	changes       broadcaster
}

// debouncedSaver batches save signals into one write per quiet period.
type debouncedSaver struct {
	signal chan struct{}
	save   func() error
	name   string
}

func NewFileStorage(dir string, logger internal.Logger) (*FileStorage, error) {
	return newFileStorage(dir, 500*time.Millisecond, logger)
}

func newFileStorage(dir string, saveDelay time.Duration, logger internal.Logger) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: create data dir: %w", err)
	}
	s := &FileStorage{
		problems:      make(map[int64]*internal.Problem),
		userProblems:  make(map[int64][]*internal.Problem),
		goals:         make(map[int64]*internal.Goal),
		users:         make(map[int64]*internal.User),
		settings:      make(map[int64]*internal.UserSettings),
		nextProblemID: 1,
		nextGoalID:    1,
		dir:           dir,
		shutdownChan:  make(chan struct{}),
		saveDelay:     saveDelay,
		logger:        logger,
	}

	if err := s.load(); err != nil {
		logger.Errorf("storage: failed to load data from %s: %v", dir, err)
		return nil, err
	}

	s.savers = map[string]*debouncedSaver{
		problemsFile: {signal: make(chan struct{}, 1), save: s.saveProblems, name: problemsFile},
		goalsFile:    {signal: make(chan struct{}, 1), save: s.saveGoals, name: goalsFile},
		usersFile:    {signal: make(chan struct{}, 1), save: s.saveUsers, name: usersFile},
		settingsFile: {signal: make(chan struct{}, 1), save: s.saveSettings, name: settingsFile},
	}
	for _, sv := range s.savers {
		s.workers.Add(1)
		go s.saveWorker(sv)
	}
	return s, nil
}

func (s *FileStorage) path(name string) string {
	return filepath.Join(s.dir, name)
}

// readJSON decodes a file into v. Missing and empty files are not errors.
func readJSON(path string, v interface{}) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	if err := json.NewDecoder(file).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func (s *FileStorage) load() error {
	var problems []*internal.Problem
	if err := readJSON(s.path(problemsFile), &problems); err != nil {
		return fmt.Errorf("load problems: %w", err)
	}
	var goals []*internal.Goal
	if err := readJSON(s.path(goalsFile), &goals); err != nil {
		return fmt.Errorf("load goals: %w", err)
	}
	var users []*internal.User
	if err := readJSON(s.path(usersFile), &users); err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	var settings []*internal.UserSettings
	if err := readJSON(s.path(settingsFile), &settings); err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	touched := make(map[int64]bool)
	for _, p := range problems {
		s.problems[p.ID] = p
		touched[p.UserID] = true
		if p.ID >= s.nextProblemID {
			s.nextProblemID = p.ID + 1
		}
	}
	for userID := range touched {
		s.reindexUser(userID)
	}
	for _, g := range goals {
		s.goals[g.ID] = g
		if g.ID >= s.nextGoalID {
			s.nextGoalID = g.ID + 1
		}
	}
	for _, u := range users {
		s.users[u.ID] = u
	}
	for _, st := range settings {
		s.settings[st.UserID] = st
	}
	return nil
}

// reindexUser rebuilds a user's problem index. Callers hold s.mu.
func (s *FileStorage) reindexUser(userID int64) {
	var list []*internal.Problem
	for _, p := range s.problems {
		if p.UserID == userID {
			list = append(list, p)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].SolvedAt.Equal(list[j].SolvedAt) {
			return list[i].ID > list[j].ID
		}
		return list[i].SolvedAt.After(list[j].SolvedAt)
	})
	if len(list) == 0 {
		delete(s.userProblems, userID)
		return
	}
	s.userProblems[userID] = list
}

func atomicWriteFileJSON(filePath string, data interface{}) error {
	f, err := os.CreateTemp(filepath.Dir(filePath), filepath.Base(filePath)+".*.tmp")
	if err != nil {
		return err
	}
	tempFile := f.Name()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tempFile)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tempFile)
		return err
	}

	return os.Rename(tempFile, filePath)
}

func (s *FileStorage) saveProblems() error {
	s.mu.RLock()
	problems := make([]*internal.Problem, 0, len(s.problems))
	for _, p := range s.problems {
		problems = append(problems, p)
	}
	s.mu.RUnlock()
	sort.Slice(problems, func(i, j int) bool { return problems[i].ID < problems[j].ID })
	return atomicWriteFileJSON(s.path(problemsFile), problems)
}

func (s *FileStorage) saveGoals() error {
	s.mu.RLock()
	goals := make([]*internal.Goal, 0, len(s.goals))
	for _, g := range s.goals {
		goals = append(goals, g)
	}
	s.mu.RUnlock()
	sort.Slice(goals, func(i, j int) bool { return goals[i].ID < goals[j].ID })
	return atomicWriteFileJSON(s.path(goalsFile), goals)
}

func (s *FileStorage) saveUsers() error {
	s.mu.RLock()
	users := make([]*internal.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	s.mu.RUnlock()
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return atomicWriteFileJSON(s.path(usersFile), users)
}

func (s *FileStorage) saveSettings() error {
	s.mu.RLock()
	settings := make([]*internal.UserSettings, 0, len(s.settings))
	for _, st := range s.settings {
		settings = append(settings, st)
	}
	s.mu.RUnlock()
	sort.Slice(settings, func(i, j int) bool { return settings[i].UserID < settings[j].UserID })
	return atomicWriteFileJSON(s.path(settingsFile), settings)
}

func (s *FileStorage) saveWorker(sv *debouncedSaver) {
	defer s.workers.Done()
	timer := time.NewTimer(s.saveDelay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-sv.signal:
			timer.Reset(s.saveDelay)
		case <-timer.C:
			if err := sv.save(); err != nil {
				s.logger.Errorf("storage: error saving %s: %v", sv.name, err)
			}
		case <-s.shutdownChan:
			return
		}
	}
}

// changed schedules a save of file and announces the write. Callers must not
// hold s.mu.
func (s *FileStorage) changed(file string, userID int64) {
	select {
	case s.savers[file].signal <- struct{}{}:
	default:
	}
	s.changes.publish(userID)
}

func (s *FileStorage) Subscribe() <-chan int64 {
	return s.changes.Subscribe()
}

// Close stops the save workers, waits for any write in progress, and then
// writes everything synchronously.
func (s *FileStorage) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.shutdownChan)
		s.workers.Wait()
		s.changes.close()
		err = errors.Join(s.saveProblems(), s.saveGoals(), s.saveUsers(), s.saveSettings())
	})
	return err
}

func copyProblem(p *internal.Problem) internal.Problem {
	out := *p
	out.Topics = slices.Clone(p.Topics)
	out.Tags = slices.Clone(p.Tags)
	return out
}

// --- ProblemRepository ---
func (s *FileStorage) CreateProblem(ctx context.Context, p *internal.Problem) error {
	s.mu.Lock()
	p.ID = s.nextProblemID
	s.nextProblemID++
	stored := copyProblem(p)
	s.problems[p.ID] = &stored
	s.reindexUser(p.UserID)
	s.mu.Unlock()

	s.changed(problemsFile, p.UserID)
	return nil
}

func (s *FileStorage) GetProblem(ctx context.Context, userID, id int64) (*internal.Problem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.problems[id]
	if !ok || p.UserID != userID {
		return nil, fmt.Errorf("storage: problem %d: %w", id, internal.ErrNotFound)
	}
	out := copyProblem(p)
	return &out, nil
}

func (s *FileStorage) UpdateProblem(ctx context.Context, p *internal.Problem) error {
	s.mu.Lock()
	existing, ok := s.problems[p.ID]
	if !ok || existing.UserID != p.UserID {
		s.mu.Unlock()
		return fmt.Errorf("storage: problem %d: %w", p.ID, internal.ErrNotFound)
	}
	stored := copyProblem(p)
	s.problems[p.ID] = &stored
	s.reindexUser(p.UserID)
	s.mu.Unlock()

	s.changed(problemsFile, p.UserID)
	return nil
}

func (s *FileStorage) DeleteProblem(ctx context.Context, userID, id int64) error {
	s.mu.Lock()
	p, ok := s.problems[id]
	if !ok || p.UserID != userID {
		s.mu.Unlock()
		return fmt.Errorf("storage: problem %d: %w", id, internal.ErrNotFound)
	}
	delete(s.problems, id)
	s.reindexUser(userID)
	s.mu.Unlock()

	s.changed(problemsFile, userID)
	return nil
}

func (s *FileStorage) ListProblems(ctx context.Context, userID int64) ([]internal.Problem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ptrs := s.userProblems[userID]
	problems := make([]internal.Problem, len(ptrs))
	for i, p := range ptrs {
		problems[i] = copyProblem(p)
	}
	return problems, nil
}

// --- GoalRepository ---
func (s *FileStorage) CreateGoal(ctx context.Context, g *internal.Goal) error {
	s.mu.Lock()
	g.ID = s.nextGoalID
	s.nextGoalID++
	stored := *g
	s.goals[g.ID] = &stored
	s.mu.Unlock()

	s.changed(goalsFile, g.UserID)
	return nil
}

func (s *FileStorage) GetGoal(ctx context.Context, userID, id int64) (*internal.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		return nil, fmt.Errorf("storage: goal %d: %w", id, internal.ErrNotFound)
	}
	out := *g
	return &out, nil
}

func (s *FileStorage) UpdateGoal(ctx context.Context, g *internal.Goal) error {
	s.mu.Lock()
	existing, ok := s.goals[g.ID]
	if !ok || existing.UserID != g.UserID {
		s.mu.Unlock()
		return fmt.Errorf("storage: goal %d: %w", g.ID, internal.ErrNotFound)
	}
	stored := *g
	s.goals[g.ID] = &stored
	s.mu.Unlock()

	s.changed(goalsFile, g.UserID)
	return nil
}

func (s *FileStorage) DeleteGoal(ctx context.Context, userID, id int64) error {
	s.mu.Lock()
	g, ok := s.goals[id]
	if !ok || g.UserID != userID {
		s.mu.Unlock()
		return fmt.Errorf("storage: goal %d: %w", id, internal.ErrNotFound)
	}
	delete(s.goals, id)
	s.mu.Unlock()

	s.changed(goalsFile, userID)
	return nil
}

func (s *FileStorage) ListGoals(ctx context.Context, userID int64) ([]internal.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	goals := []internal.Goal{}
	for _, g := range s.goals {
		if g.UserID == userID {
			goals = append(goals, *g)
		}
	}
	sort.Slice(goals, func(i, j int) bool { return goals[i].ID < goals[j].ID })
	return goals, nil
}

// --- UserRepository ---
func (s *FileStorage) GetUser(ctx context.Context, id int64) (*internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("storage: user %d: %w", id, internal.ErrNotFound)
	}
	out := *u
	return &out, nil
}

func (s *FileStorage) SaveUser(ctx context.Context, u *internal.User) error {
	s.mu.Lock()
	stored := *u
	s.users[u.ID] = &stored
	s.mu.Unlock()

	s.changed(usersFile, u.ID)
	return nil
}

func (s *FileStorage) ListUsers(ctx context.Context) ([]internal.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	users := make([]internal.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *FileStorage) GetSettings(ctx context.Context, userID int64) (*internal.UserSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.settings[userID]
	if !ok {
		return nil, fmt.Errorf("storage: settings for user %d: %w", userID, internal.ErrNotFound)
	}
	out := *st
	return &out, nil
}

func (s *FileStorage) SaveSettings(ctx context.Context, st *internal.UserSettings) error {
	s.mu.Lock()
	stored := *st
	s.settings[st.UserID] = &stored
	s.mu.Unlock()

	s.changed(settingsFile, st.UserID)
	return nil
}

// --- Compile-time assertions ---
var _ Store = (*FileStorage)(nil)
var _ ChangeNotifier = (*FileStorage)(nil)
