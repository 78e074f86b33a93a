package interview

// QuestionQueue is a bounded FIFO of pre-generated questions. Pipeline
// workers produce into it concurrently; the orchestrator serving the session
// is the single logical consumer.
type QuestionQueue struct {
	items chan *Question
}

func NewQuestionQueue(size int) *QuestionQueue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &QuestionQueue{items: make(chan *Question, size)}
}

// Push enqueues the question without blocking. It reports false when the
// queue is full and the question was dropped.
func (q *QuestionQueue) Push(item *Question) bool {
	select {
	case q.items <- item:
		return true
	default:
		return false
	}
}

// TryPop dequeues the oldest question without blocking.
func (q *QuestionQueue) TryPop() (*Question, bool) {
	select {
	case item := <-q.items:
		return item, true
	default:
		return nil, false
	}
}

// Len returns the number of buffered questions.
func (q *QuestionQueue) Len() int {
	return len(q.items)
}
