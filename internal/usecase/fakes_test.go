package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"campuslink/internal/domain/entity"
	"campuslink/pkg/errors"
)

// In-memory stand-ins for the Firestore repositories, mirroring their
// aggregation behavior so the core can be exercised without a backend.

type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []*entity.Message
	seq      int
	creates  int
	failLoad bool
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{}
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	r.creates++
	if message.ID == "" {
		message.ID = fmt.Sprintf("msg-%d", r.seq)
	}
	if message.Type == "" {
		message.Type = entity.MessageTypeText
	}
	message.CreatedAt = time.Unix(int64(1700000000+r.seq), 0)
	stored := *message
	r.messages = append(r.messages, &stored)
	return nil
}

// seed stores a message with an explicit id and timestamp offset.
func (r *fakeMessageRepo) seed(id, sender, recipient, courseID, content string, read bool) *entity.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	message := &entity.Message{
		ID:          id,
		SenderID:    sender,
		RecipientID: recipient,
		CourseID:    courseID,
		Content:     content,
		Type:        entity.MessageTypeText,
		Read:        read,
		CreatedAt:   time.Unix(int64(1700000000+r.seq), 0),
	}
	r.messages = append(r.messages, message)
	return message
}

func (r *fakeMessageRepo) ListBetween(ctx context.Context, userA, userB string, limit int) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Message
	for _, m := range r.messages {
		if (m.SenderID == userA && m.RecipientID == userB) || (m.SenderID == userB && m.RecipientID == userA) {
			copied := *m
			out = append(out, &copied)
		}
	}
	sortByCreation(out)
	return lastN(out, limit), nil
}

func (r *fakeMessageRepo) ListForCourse(ctx context.Context, courseID string, limit int) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Message
	for _, m := range r.messages {
		if m.CourseID == courseID {
			copied := *m
			out = append(out, &copied)
		}
	}
	sortByCreation(out)
	return lastN(out, limit), nil
}

func (r *fakeMessageRepo) ConversationSummaries(ctx context.Context, userID string) ([]*entity.ConversationSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failLoad {
		return nil, errors.Internal("store unavailable", nil)
	}

	var involved []*entity.Message
	for _, m := range r.messages {
		if m.SenderID == userID || m.RecipientID == userID {
			involved = append(involved, m)
		}
	}
	sortByCreation(involved)

	byCounterpart := make(map[string]*entity.ConversationSummary)
	var order []string
	for _, m := range involved {
		counterpart := m.CounterpartFor(userID)
		if counterpart == "" {
			continue
		}
		summary, ok := byCounterpart[counterpart]
		if !ok {
			kind := entity.ConversationDirect
			if m.CourseID != "" {
				kind = entity.ConversationCourse
			}
			summary = &entity.ConversationSummary{CounterpartID: counterpart, Kind: kind}
			byCounterpart[counterpart] = summary
			order = append(order, counterpart)
		}
		summary.LastMessage = m.Content
		summary.LastMessageTime = m.CreatedAt
		if m.SenderID != userID && !m.Read {
			summary.UnreadCount++
		}
	}

	summaries := make([]*entity.ConversationSummary, 0, len(order))
	for _, id := range order {
		summaries = append(summaries, byCounterpart[id])
	}
	return summaries, nil
}

func (r *fakeMessageRepo) MarkConversationRead(ctx context.Context, userID, counterpartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.messages {
		if m.SenderID == counterpartID && m.RecipientID == userID {
			m.Read = true
		}
	}
	return nil
}

func (r *fakeMessageRepo) createCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.creates
}

func sortByCreation(messages []*entity.Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
}

func lastN(messages []*entity.Message, limit int) []*entity.Message {
	if limit > 0 && len(messages) > limit {
		return messages[len(messages)-limit:]
	}
	return messages
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*entity.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, errors.NotFound("User", nil)
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, errors.NotFound("User", nil)
}

func (r *fakeUserRepo) Update(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Search(ctx context.Context, query string, limit int) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.User
	for _, user := range r.users {
		copied := *user
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeUserRepo) CountByRole(ctx context.Context, role entity.UserRole) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, user := range r.users {
		if user.Role == role {
			count++
		}
	}
	return count, nil
}

type fakeCourseRepo struct {
	mu      sync.Mutex
	courses map[string]*entity.Course
}

func newFakeCourseRepo(courses ...*entity.Course) *fakeCourseRepo {
	repo := &fakeCourseRepo{courses: make(map[string]*entity.Course)}
	for _, c := range courses {
		repo.courses[c.ID] = c
	}
	return repo
}

func (r *fakeCourseRepo) Create(ctx context.Context, course *entity.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.courses[course.ID] = course
	return nil
}

func (r *fakeCourseRepo) GetByID(ctx context.Context, id string) (*entity.Course, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if course, ok := r.courses[id]; ok {
		copied := *course
		return &copied, nil
	}
	return nil, errors.NotFound("Course", nil)
}

func (r *fakeCourseRepo) ListByTeacher(ctx context.Context, teacherID string, limit, offset int) ([]*entity.Course, int64, error) {
	return r.filter(func(c *entity.Course) bool { return c.TeacherID == teacherID })
}

func (r *fakeCourseRepo) ListByStudent(ctx context.Context, studentID string, limit, offset int) ([]*entity.Course, int64, error) {
	return r.filter(func(c *entity.Course) bool {
		for _, id := range c.StudentIDs {
			if id == studentID {
				return true
			}
		}
		return false
	})
}

func (r *fakeCourseRepo) List(ctx context.Context, limit, offset int) ([]*entity.Course, int64, error) {
	return r.filter(func(*entity.Course) bool { return true })
}

func (r *fakeCourseRepo) Update(ctx context.Context, course *entity.Course) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.courses[course.ID] = course
	return nil
}

func (r *fakeCourseRepo) Count(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.courses)), nil
}

func (r *fakeCourseRepo) filter(keep func(*entity.Course) bool) ([]*entity.Course, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Course
	for _, course := range r.courses {
		if keep(course) {
			copied := *course
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}
