// Package memstore is the in-memory reference implementation of the
// repository interfaces. One mutex guards the whole store: every read and
// write is mutually exclusive. That is deliberately coarse-grained but
// correct, and plenty for single-family request volume; it also gives the
// service tests a storage backend with no I/O.
package memstore

import (
	"fmt"
	"sync"
	"time"

	"github.com/lemonqwest/lemonqwest/internal/model"
	"github.com/lemonqwest/lemonqwest/internal/service"
)

type Store struct {
	mu           sync.Mutex
	users        map[int64]model.User
	tasks        map[int64]model.Task
	achievements map[int64]model.Achievement
	rewards      map[int64]model.Reward
	redemptions  map[int64]model.RewardRedemption
	nextID       int64
}

func New() *Store {
	return &Store{
		users:        make(map[int64]model.User),
		tasks:        make(map[int64]model.Task),
		achievements: make(map[int64]model.Achievement),
		rewards:      make(map[int64]model.Reward),
		redemptions:  make(map[int64]model.RewardRedemption),
	}
}

func (s *Store) allocID() int64 {
	s.nextID++
	return s.nextID
}

// --- Seeding helpers (lock-taking; used by tests and local setup) ---

func (s *Store) AddUser(u model.User) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.allocID()
	}
	s.users[u.ID] = u
	return u
}

func (s *Store) AddTask(t model.Task) model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == 0 {
		t.ID = s.allocID()
	}
	s.tasks[t.ID] = t
	return t
}

func (s *Store) AddReward(r model.Reward) model.Reward {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.ID == 0 {
		r.ID = s.allocID()
	}
	s.rewards[r.ID] = r
	return r
}

// --- UnitOfWork ---

// Repos returns repositories that take the store lock per call.
func (s *Store) Repos() service.Repos {
	r := lockedRepos{s: s}
	return service.Repos{Users: r, Tasks: r, Achievements: r, Rewards: r}
}

// Do runs fn under the store lock. The maps are snapshotted first and
// restored if fn fails, so a failed use case leaves no partial writes
// behind.
func (s *Store) Do(fn func(service.Repos) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	b := boundRepos{s: s}
	if err := fn(service.Repos{Users: b, Tasks: b, Achievements: b, Rewards: b}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type snapshotState struct {
	users        map[int64]model.User
	tasks        map[int64]model.Task
	achievements map[int64]model.Achievement
	rewards      map[int64]model.Reward
	redemptions  map[int64]model.RewardRedemption
	nextID       int64
}

func (s *Store) snapshot() snapshotState {
	return snapshotState{
		users:        cloneMap(s.users),
		tasks:        cloneMap(s.tasks),
		achievements: cloneMap(s.achievements),
		rewards:      cloneMap(s.rewards),
		redemptions:  cloneMap(s.redemptions),
		nextID:       s.nextID,
	}
}

func (s *Store) restore(snap snapshotState) {
	s.users = snap.users
	s.tasks = snap.tasks
	s.achievements = snap.achievements
	s.rewards = snap.rewards
	s.redemptions = snap.redemptions
	s.nextID = snap.nextID
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// --- Repository logic (lock must be held) ---

func (s *Store) getUser(id int64) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *Store) setTokenBalance(id int64, balance int) error {
	u, ok := s.users[id]
	if !ok {
		return fmt.Errorf("user %d not found", id)
	}
	u.TokenBalance = balance
	u.UpdatedAt = time.Now()
	s.users[id] = u
	return nil
}

func (s *Store) getTask(id int64) (*model.Task, error) {
	t, ok := s.tasks[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *Store) listTasksByUser(userID int64) ([]model.Task, error) {
	var out []model.Task
	for _, t := range s.tasks {
		if t.AssignedTo == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (s *Store) setTaskCompletion(id int64, completed bool, completedAt *time.Time) error {
	t, ok := s.tasks[id]
	if !ok {
		return fmt.Errorf("task %d not found", id)
	}
	t.IsCompleted = completed
	t.CompletedAt = completedAt
	s.tasks[id] = t
	return nil
}

func (s *Store) deleteTask(id int64) error {
	delete(s.tasks, id)
	return nil
}

func (s *Store) listAchievementsByUser(userID int64) ([]model.Achievement, error) {
	var out []model.Achievement
	for _, a := range s.achievements {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *Store) upsertAchievement(userID int64, typ model.AchievementType, progress int, unlocked bool, unlockedAt *time.Time) error {
	now := time.Now()
	for id, a := range s.achievements {
		if a.UserID == userID && a.Type == typ {
			a.Progress = progress
			a.IsUnlocked = unlocked
			a.UnlockedAt = unlockedAt
			a.UpdatedAt = now
			s.achievements[id] = a
			return nil
		}
	}
	id := s.allocID()
	s.achievements[id] = model.Achievement{
		ID:         id,
		UserID:     userID,
		Type:       typ,
		Progress:   progress,
		IsUnlocked: unlocked,
		UnlockedAt: unlockedAt,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	return nil
}

func (s *Store) getReward(id int64) (*model.Reward, error) {
	r, ok := s.rewards[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (s *Store) createRedemption(rewardID, userID int64, tokensSpent int, redeemedAt time.Time) error {
	id := s.allocID()
	s.redemptions[id] = model.RewardRedemption{
		ID:          id,
		RewardID:    rewardID,
		UserID:      userID,
		TokensSpent: tokensSpent,
		RedeemedAt:  redeemedAt,
	}
	return nil
}

func (s *Store) sumTokensSpent(userID int64) (int, error) {
	total := 0
	for _, r := range s.redemptions {
		if r.UserID == userID {
			total += r.TokensSpent
		}
	}
	return total, nil
}

// lockedRepos takes the store lock on every call; used outside Do.
type lockedRepos struct {
	s *Store
}

func (r lockedRepos) GetUser(id int64) (*model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.getUser(id)
}

func (r lockedRepos) SetTokenBalance(id int64, balance int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.setTokenBalance(id, balance)
}

func (r lockedRepos) GetTask(id int64) (*model.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.getTask(id)
}

func (r lockedRepos) ListTasksByUser(userID int64) ([]model.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.listTasksByUser(userID)
}

func (r lockedRepos) SetTaskCompletion(id int64, completed bool, completedAt *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.setTaskCompletion(id, completed, completedAt)
}

func (r lockedRepos) DeleteTask(id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.deleteTask(id)
}

func (r lockedRepos) ListAchievementsByUser(userID int64) ([]model.Achievement, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.listAchievementsByUser(userID)
}

func (r lockedRepos) UpsertAchievement(userID int64, typ model.AchievementType, progress int, unlocked bool, unlockedAt *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.upsertAchievement(userID, typ, progress, unlocked, unlockedAt)
}

func (r lockedRepos) GetReward(id int64) (*model.Reward, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.getReward(id)
}

func (r lockedRepos) CreateRedemption(rewardID, userID int64, tokensSpent int, redeemedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.createRedemption(rewardID, userID, tokensSpent, redeemedAt)
}

func (r lockedRepos) SumTokensSpent(userID int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.sumTokensSpent(userID)
}

// boundRepos runs inside Do, where the lock is already held.
type boundRepos struct {
	s *Store
}

func (r boundRepos) GetUser(id int64) (*model.User, error) {
	return r.s.getUser(id)
}

func (r boundRepos) SetTokenBalance(id int64, balance int) error {
	return r.s.setTokenBalance(id, balance)
}

func (r boundRepos) GetTask(id int64) (*model.Task, error) {
	return r.s.getTask(id)
}

func (r boundRepos) ListTasksByUser(userID int64) ([]model.Task, error) {
	return r.s.listTasksByUser(userID)
}

func (r boundRepos) SetTaskCompletion(id int64, completed bool, completedAt *time.Time) error {
	return r.s.setTaskCompletion(id, completed, completedAt)
}

func (r boundRepos) DeleteTask(id int64) error {
	return r.s.deleteTask(id)
}

func (r boundRepos) ListAchievementsByUser(userID int64) ([]model.Achievement, error) {
	return r.s.listAchievementsByUser(userID)
}

func (r boundRepos) UpsertAchievement(userID int64, typ model.AchievementType, progress int, unlocked bool, unlockedAt *time.Time) error {
	return r.s.upsertAchievement(userID, typ, progress, unlocked, unlockedAt)
}

func (r boundRepos) GetReward(id int64) (*model.Reward, error) {
	return r.s.getReward(id)
}

func (r boundRepos) CreateRedemption(rewardID, userID int64, tokensSpent int, redeemedAt time.Time) error {
	return r.s.createRedemption(rewardID, userID, tokensSpent, redeemedAt)
}

func (r boundRepos) SumTokensSpent(userID int64) (int, error) {
	return r.s.sumTokensSpent(userID)
}
