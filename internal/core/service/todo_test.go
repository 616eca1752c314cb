package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	. "thingstodo/pkg/test"

	"thingstodo/internal/adapter/database/sqlite/repository"
	"thingstodo/internal/core/domain"
	"thingstodo/internal/core/model/request"
	"thingstodo/internal/core/port"
	"thingstodo/internal/core/service"
)

type stubSearcher struct {
	image  *domain.Image
	titles []string
}

func (s *stubSearcher) Search(ctx context.Context, title string) *domain.Image {
	s.titles = append(s.titles, title)
	return s.image
}

type failingRepository struct {
	port.TodoRepository
	err error
}

func (r *failingRepository) GetAll(ctx context.Context) ([]domain.Todo, error) {
	return nil, r.err
}

func (r *failingRepository) Create(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	return domain.Todo{}, r.err
}

func (r *failingRepository) DeleteByID(ctx context.Context, id int64) error {
	return r.err
}

func strPtr(s string) *string { return &s }

type TodoServiceTestSuite struct {
	suite.Suite
	Service  *service.TodoService
	TodoRepo port.TodoRepository
	Searcher *stubSearcher
}

func (s *TodoServiceTestSuite) SetupTest() {
	db := InitTestDB()

	s.TodoRepo = repository.NewTodoRepository(db, nil)
	s.Searcher = &stubSearcher{}
	s.Service = service.NewTodoService(s.TodoRepo, s.Searcher, nil)
}

func TestTodoServiceTestSuite(t *testing.T) {
	RegisterTestingT(t)

	suite.Run(t, new(TodoServiceTestSuite))
}

func (s *TodoServiceTestSuite) TestService_GetAll_Empty() {
	todos, err := s.Service.GetAll(context.Background())

	Expect(err).To(BeNil())
	Expect(todos).To(BeEmpty())
}

func (s *TodoServiceTestSuite) TestService_Create_WithImage() {
	s.Searcher.image = &domain.Image{URL: "https://images.pexels.com/milk.jpeg", Alt: "a bottle of milk"}

	before := time.Now().UTC().Add(-time.Second)

	todo, err := s.Service.Create(context.Background(), request.CreateTodoRequest{
		Title:   strPtr("Buy milk"),
		DueDate: "2025-06-01T00:00:00Z",
	})

	Expect(err).To(BeNil())
	Expect(todo.ID).To(BeNumerically(">", 0))
	Expect(todo.Title).To(Equal("Buy milk"))
	Expect(todo.CreatedAt).To(BeTemporally(">=", before))
	Expect(todo.DueDate.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))).To(BeTrue())
	Expect(*todo.ImageURL).To(Equal("https://images.pexels.com/milk.jpeg"))
	Expect(*todo.ImageAlt).To(Equal("a bottle of milk"))
	Expect(s.Searcher.titles).To(Equal([]string{"Buy milk"}))
}

func (s *TodoServiceTestSuite) TestService_Create_WithoutImage() {
	todo, err := s.Service.Create(context.Background(), request.CreateTodoRequest{Title: strPtr("xyzzy")})

	Expect(err).To(BeNil())
	Expect(todo.ImageURL).To(BeNil())
	Expect(todo.ImageAlt).To(BeNil())
	Expect(todo.DueDate).To(BeNil())
}

func (s *TodoServiceTestSuite) TestService_Create_KeepsTitleUntrimmed() {
	todo, err := s.Service.Create(context.Background(), request.CreateTodoRequest{Title: strPtr("  Walk dog  ")})

	Expect(err).To(BeNil())
	Expect(todo.Title).To(Equal("  Walk dog  "))
}

func (s *TodoServiceTestSuite) TestService_Create_BlankTitle() {
	for _, title := range []*string{nil, strPtr(""), strPtr("   ")} {
		_, err := s.Service.Create(context.Background(), request.CreateTodoRequest{Title: title})

		assert.ErrorIs(s.T(), err, domain.ErrTitleRequired)
	}

	todos, _ := s.Service.GetAll(context.Background())

	Expect(todos).To(BeEmpty())
	Expect(s.Searcher.titles).To(BeEmpty())
}

func (s *TodoServiceTestSuite) TestService_Create_InvalidDueDate() {
	_, err := s.Service.Create(context.Background(), request.CreateTodoRequest{
		Title:   strPtr("Pay rent"),
		DueDate: "next tuesday",
	})

	assert.ErrorIs(s.T(), err, domain.ErrInvalidDueDate)
	Expect(s.Searcher.titles).To(BeEmpty())
}

func (s *TodoServiceTestSuite) TestService_GetAll_NewestFirst() {
	first, _ := s.Service.Create(context.Background(), request.CreateTodoRequest{Title: strPtr("first")})
	time.Sleep(5 * time.Millisecond)
	second, _ := s.Service.Create(context.Background(), request.CreateTodoRequest{Title: strPtr("second")})

	todos, err := s.Service.GetAll(context.Background())

	Expect(err).To(BeNil())
	Expect(todos).To(HaveLen(2))
	Expect(todos[0].ID).To(Equal(second.ID))
	Expect(todos[1].ID).To(Equal(first.ID))
}

func (s *TodoServiceTestSuite) TestService_DeleteByID() {
	todo, _ := s.Service.Create(context.Background(), request.CreateTodoRequest{Title: strPtr("Test")})

	Expect(s.Service.DeleteByID(context.Background(), todo.ID)).To(Succeed())

	err := s.Service.DeleteByID(context.Background(), todo.ID)

	assert.ErrorIs(s.T(), err, domain.ErrTodoNotFound)
	assert.NotErrorIs(s.T(), err, domain.ErrPersistence)
}

func (s *TodoServiceTestSuite) TestService_StoreFailures() {
	cause := errors.New("disk I/O error")
	svc := service.NewTodoService(&failingRepository{err: cause}, s.Searcher, nil)

	_, err := svc.GetAll(context.Background())
	assert.ErrorIs(s.T(), err, domain.ErrPersistence)
	assert.ErrorIs(s.T(), err, cause)

	_, err = svc.Create(context.Background(), request.CreateTodoRequest{Title: strPtr("Buy milk")})
	assert.ErrorIs(s.T(), err, domain.ErrPersistence)

	err = svc.DeleteByID(context.Background(), 1)
	assert.ErrorIs(s.T(), err, domain.ErrPersistence)
}

func (s *TodoServiceTestSuite) TestService_NilSearcher() {
	svc := service.NewTodoService(s.TodoRepo, nil, nil)

	todo, err := svc.Create(context.Background(), request.CreateTodoRequest{Title: strPtr("No images")})

	Expect(err).To(BeNil())
	Expect(todo.HasImage()).To(BeFalse())
}
