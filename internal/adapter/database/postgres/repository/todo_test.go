package repository_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"thingstodo/internal/adapter/database/postgres"
	"thingstodo/internal/adapter/database/postgres/repository"
	"thingstodo/internal/core/domain"
	"thingstodo/internal/core/port"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Uses TEST_DATABASE_URL when set, otherwise starts a throwaway postgres
// container.
type TodoRepositoryTestSuite struct {
	suite.Suite
	pgContainer testcontainers.Container
	DB          *postgres.DB
	TodoRepo    port.TodoRepository
}

func (s *TodoRepositoryTestSuite) SetupSuite() {
	ctx := context.Background()

	url := os.Getenv("TEST_DATABASE_URL")

	if url == "" {
		url = s.startContainer(ctx)
	}

	db, err := postgres.NewDB(ctx, url)
	s.Require().NoError(err)

	s.DB = db
	s.TodoRepo = repository.NewTodoRepository(db, nil)
}

func (s *TodoRepositoryTestSuite) startContainer(ctx context.Context) string {
	testcontainers.SkipIfProviderIsNotHealthy(s.T())

	req := testcontainers.GenericContainerRequest{
		Started: true,
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_DB":       "testdb",
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		},
	}

	pgContainer, err := testcontainers.GenericContainer(ctx, req)
	s.Require().NoError(err)

	s.pgContainer = pgContainer

	host, err := pgContainer.Host(ctx)
	s.Require().NoError(err)

	port, err := pgContainer.MappedPort(ctx, "5432")
	s.Require().NoError(err)

	return fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())
}

func (s *TodoRepositoryTestSuite) SetupTest() {
	_, err := s.DB.Exec(context.Background(), "TRUNCATE todos RESTART IDENTITY")
	s.Require().NoError(err)
}

func (s *TodoRepositoryTestSuite) TearDownSuite() {
	if s.DB != nil {
		s.DB.Close()
	}

	if s.pgContainer != nil {
		_ = testcontainers.TerminateContainer(s.pgContainer)
	}
}

func TestTodoRepositoryTestSuite(t *testing.T) {
	if testing.Short() && os.Getenv("TEST_DATABASE_URL") == "" {
		t.Skip("postgres container skipped in short mode")
	}

	RegisterTestingT(t)
	suite.Run(t, new(TodoRepositoryTestSuite))
}

func (s *TodoRepositoryTestSuite) TestRepository_CreateAndList() {
	base := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	due := base.Add(48 * time.Hour)

	older := domain.Todo{Title: "older", CreatedAt: base}
	newer := domain.Todo{Title: "newer", CreatedAt: base.Add(time.Minute), DueDate: &due}
	newer.AttachImage(&domain.Image{URL: "https://images.pexels.com/x.jpeg", Alt: "x"})

	_, err := s.TodoRepo.Create(context.Background(), older)
	Expect(err).To(BeNil())

	saved, err := s.TodoRepo.Create(context.Background(), newer)
	Expect(err).To(BeNil())
	Expect(saved.ID).To(BeNumerically(">", 0))
	Expect(saved.DueDate.Equal(due)).To(BeTrue())
	Expect(*saved.ImageAlt).To(Equal("x"))

	todos, err := s.TodoRepo.GetAll(context.Background())

	Expect(err).To(BeNil())
	Expect(todos).To(HaveLen(2))
	Expect(todos[0].Title).To(Equal("newer"))
}

func (s *TodoRepositoryTestSuite) TestRepository_DeleteByID_NotFound() {
	err := s.TodoRepo.DeleteByID(context.Background(), 4242)

	Expect(errors.Is(err, domain.ErrTodoNotFound)).To(BeTrue())
}
