package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/suite"

	"thingstodo/internal/core/model/request"
	"thingstodo/internal/core/model/response"
)

// fakeAPI blocks Create and Delete until the test releases them.
type fakeAPI struct {
	mu      sync.Mutex
	todos   []response.TodoResponse
	nextID  int64
	failAdd error
	failDel error
	failGet error

	createGate chan struct{}
	deleteGate chan struct{}
}

func newFakeAPI(todos ...response.TodoResponse) *fakeAPI {
	return &fakeAPI{
		todos:      todos,
		nextID:     100,
		createGate: make(chan struct{}),
		deleteGate: make(chan struct{}),
	}
}

func (f *fakeAPI) List(ctx context.Context) ([]response.TodoResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failGet != nil {
		return nil, f.failGet
	}

	return append([]response.TodoResponse(nil), f.todos...), nil
}

func (f *fakeAPI) Create(ctx context.Context, req request.CreateTodoRequest) (response.TodoResponse, error) {
	<-f.createGate

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failAdd != nil {
		return response.TodoResponse{}, f.failAdd
	}

	f.nextID++
	todo := response.TodoResponse{ID: f.nextID, Title: *req.Title, CreatedAt: time.Now().UTC()}
	f.todos = append([]response.TodoResponse{todo}, f.todos...)

	return todo, nil
}

func (f *fakeAPI) Delete(ctx context.Context, id int64) error {
	<-f.deleteGate

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failDel != nil {
		return f.failDel
	}

	for i, todo := range f.todos {
		if todo.ID == id {
			f.todos = append(f.todos[:i], f.todos[i+1:]...)
			return nil
		}
	}

	return &StatusError{StatusCode: 404, Message: "Todo not found"}
}

func titles(items []Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Todo.Title)
	}
	return out
}

type ControllerTestSuite struct {
	suite.Suite
	api        *fakeAPI
	controller *Controller
}

func (s *ControllerTestSuite) SetupTest() {
	s.api = newFakeAPI(
		response.TodoResponse{ID: 2, Title: "B"},
		response.TodoResponse{ID: 1, Title: "A"},
	)
	s.controller = NewController(s.api, nil)
	s.controller.Load(context.Background())
}

func TestControllerTestSuite(t *testing.T) {
	RegisterTestingT(t)
	suite.Run(t, new(ControllerTestSuite))
}

func (s *ControllerTestSuite) TestLoad() {
	Expect(titles(s.controller.Items())).To(Equal([]string{"B", "A"}))
	Expect(s.controller.Items()[0].Key).To(Equal(Persisted(2)))
}

func (s *ControllerTestSuite) TestLoad_FailureKeepsList() {
	s.api.failGet = errors.New("connection refused")

	s.controller.Load(context.Background())

	Expect(titles(s.controller.Items())).To(Equal([]string{"B", "A"}))
}

func (s *ControllerTestSuite) TestAdd_ShowsPlaceholderBeforeResponse() {
	s.controller.SetDraft(Draft{Title: "X", DueDate: "2025-01-01"})

	key, ok := s.controller.Add(context.Background(), "X", "2025-01-01")

	Expect(ok).To(BeTrue())
	Expect(key.IsTemporary()).To(BeTrue())

	items := s.controller.Items()

	Expect(items).To(HaveLen(3))
	Expect(items[0].Todo.Title).To(Equal("X"))
	Expect(items[0].Loading).To(BeTrue())
	Expect(items[0].Todo.DueDate).NotTo(BeNil())
	Expect(s.controller.Draft()).To(Equal(Draft{}))

	close(s.api.createGate)
	s.controller.Wait()

	items = s.controller.Items()

	Expect(titles(items)).To(Equal([]string{"X", "B", "A"}))
	Expect(items[0].Loading).To(BeFalse())
	Expect(items[0].Key).To(Equal(Persisted(101)))
}

func (s *ControllerTestSuite) TestAdd_FailureRemovesOnlyPlaceholder() {
	s.api.failAdd = errors.New("boom")

	s.controller.Add(context.Background(), "X", "")

	Expect(titles(s.controller.Items())).To(Equal([]string{"X", "B", "A"}))

	close(s.api.createGate)
	s.controller.Wait()

	Expect(titles(s.controller.Items())).To(Equal([]string{"B", "A"}))
}

func (s *ControllerTestSuite) TestAdd_BlankTitleIsIgnored() {
	_, ok := s.controller.Add(context.Background(), "   ", "")

	Expect(ok).To(BeFalse())
	Expect(s.controller.Items()).To(HaveLen(2))
}

func (s *ControllerTestSuite) TestAdd_PlaceholdersHaveDistinctKeys() {
	first, _ := s.controller.Add(context.Background(), "X", "")
	second, _ := s.controller.Add(context.Background(), "X", "")

	Expect(first).NotTo(Equal(second))

	close(s.api.createGate)
	s.controller.Wait()
}

func (s *ControllerTestSuite) TestDelete_RemovesImmediately() {
	Expect(s.controller.Delete(context.Background(), Persisted(2))).To(BeTrue())

	Expect(titles(s.controller.Items())).To(Equal([]string{"A"}))

	close(s.api.deleteGate)
	s.controller.Wait()

	Expect(titles(s.controller.Items())).To(Equal([]string{"A"}))
}

func (s *ControllerTestSuite) TestDelete_FailureRestoresSnapshot() {
	s.api.failDel = &StatusError{StatusCode: 500, Message: "Error deleting todo"}

	s.controller.Delete(context.Background(), Persisted(1))

	Expect(titles(s.controller.Items())).To(Equal([]string{"B"}))

	close(s.api.deleteGate)
	s.controller.Wait()

	Expect(titles(s.controller.Items())).To(Equal([]string{"B", "A"}))
}

func (s *ControllerTestSuite) TestDelete_TemporaryKeyIsRejected() {
	key, _ := s.controller.Add(context.Background(), "X", "")

	Expect(s.controller.Delete(context.Background(), key)).To(BeFalse())

	close(s.api.createGate)
	s.controller.Wait()
}

func (s *ControllerTestSuite) TestSubscribe_NotifiesOnChange() {
	changes := s.controller.Subscribe()

	s.controller.Delete(context.Background(), Persisted(1))

	Eventually(changes).Should(Receive())

	close(s.api.deleteGate)
	s.controller.Wait()
}

func TestKey(t *testing.T) {
	RegisterTestingT(t)

	Expect(Persisted(7).IsTemporary()).To(BeFalse())
	Expect(Persisted(7).ID()).To(BeEquivalentTo(7))
	Expect(Persisted(7).String()).To(Equal("7"))
	Expect(Key{}.IsTemporary()).To(BeFalse())
}
