//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
)

// Worker runs until its context is cancelled or it fails.
// Restarting it is the supervisor's job, not its own.
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to name a worker in logs,
// so workers do not have to carry a name themselves.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
