package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"chat-service/internal/auth"
	"chat-service/internal/database"
	"chat-service/internal/models"
)

type publishedEvent struct {
	Channel string
	Event   models.Event
}

type fakePublisher struct {
	mu     sync.Mutex
	subs   map[string][]string
	events []publishedEvent
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{subs: make(map[string][]string)}
}

func (p *fakePublisher) Subscribe(connID, channel string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subs[connID] = append(p.subs[connID], channel)
}

func (p *fakePublisher) Unsubscribe(connID, channel string) {}

func (p *fakePublisher) Publish(channel string, event models.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Channel: channel, Event: event})
}

func (p *fakePublisher) published() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

type fakeAuth struct {
	claims *auth.TokenClaims
	err    error
}

func (a *fakeAuth) Verify(token string) (*auth.TokenClaims, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.claims, nil
}

type fakeUserRepo struct {
	users map[int64]*models.User
	err   error
}

func (r *fakeUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	user, ok := r.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, database.ErrNotFound
}

func (r *fakeUserRepo) ListUsers(ctx context.Context, filter models.MemberFilter) ([]*models.User, int64, error) {
	if r.err != nil {
		return nil, 0, r.err
	}
	var matched []*models.User
	for _, u := range r.users {
		if u.RoleLevel >= filter.MaxLevel || u.ID == filter.ExcludeID {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(strings.ToLower(u.Username), strings.ToLower(filter.Keyword)) {
			continue
		}
		matched = append(matched, u)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Username < matched[j].Username })

	total := int64(len(matched))
	if filter.Skip >= len(matched) {
		return nil, total, nil
	}
	matched = matched[filter.Skip:]
	if len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

type fakeMessageRepo struct {
	nextID    int64
	messages  map[int64]*models.Message
	createErr error
	findErr   error
	// zeroID simulates a store that accepts the row but assigns no id
	zeroID bool
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{messages: make(map[int64]*models.Message)}
}

func (r *fakeMessageRepo) CreateMessage(ctx context.Context, msg *models.Message) (int64, error) {
	if r.createErr != nil {
		return 0, r.createErr
	}
	if r.zeroID {
		return 0, nil
	}
	r.nextID++
	stored := *msg
	stored.ID = r.nextID
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	r.messages[stored.ID] = &stored
	return stored.ID, nil
}

func (r *fakeMessageRepo) GetMessageByID(ctx context.Context, id int64) (*models.Message, error) {
	msg, ok := r.messages[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	copied := *msg
	return &copied, nil
}

func (r *fakeMessageRepo) FindMessages(ctx context.Context, filter models.MessageFilter) ([]*models.Message, int64, error) {
	if r.findErr != nil {
		return nil, 0, r.findErr
	}
	var matched []*models.Message
	for _, m := range r.messages {
		if m.Room != filter.Room {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(strings.ToLower(m.Content), strings.ToLower(filter.Keyword)) {
			continue
		}
		matched = append(matched, m)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	total := int64(len(matched))
	if filter.Skip >= len(matched) {
		return nil, total, nil
	}
	matched = matched[filter.Skip:]
	if len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

// countingStore wraps a presence store and counts every call, so tests
// can assert that nothing touched presence state.
type countingStore struct {
	calls int
	err   error

	online map[int64]bool
	unread map[int64]map[int64]bool
}

func newCountingStore() *countingStore {
	return &countingStore{
		online: make(map[int64]bool),
		unread: make(map[int64]map[int64]bool),
	}
}

func (s *countingStore) AddOnline(userID int64) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	s.online[userID] = true
	return nil
}

func (s *countingStore) RemoveOnline(userID int64) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	delete(s.online, userID)
	return nil
}

func (s *countingStore) ListOnline() ([]int64, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	var out []int64
	for id := range s.online {
		out = append(out, id)
	}
	return out, nil
}

func (s *countingStore) AddUnread(userID, room int64) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	if s.unread[userID] == nil {
		s.unread[userID] = make(map[int64]bool)
	}
	s.unread[userID][room] = true
	return nil
}

func (s *countingStore) RemoveUnread(userID, room int64) (bool, error) {
	s.calls++
	if s.err != nil {
		return false, s.err
	}
	if !s.unread[userID][room] {
		return false, nil
	}
	delete(s.unread[userID], room)
	return true, nil
}

func (s *countingStore) ListUnreadRooms(userID int64) ([]int64, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	var out []int64
	for room := range s.unread[userID] {
		out = append(out, room)
	}
	return out, nil
}

func (s *countingStore) Close() error { return nil }

var errStoreDown = errors.New("store down")
