package events

import (
	"context"
	"sync"
)

type afterCommitKey struct{}

type afterCommit struct {
	mtx sync.Mutex
	fns []func()
}

// WithAfterCommit открывает список отложенных действий для единицы работы.
// flush выполняет их по порядку и должен вызываться только после успешного коммита.
// Если список уже открыт внешней единицей работы, возвращается тот же ctx и пустой flush.
func WithAfterCommit(ctx context.Context) (context.Context, func()) {
	if _, ok := ctx.Value(afterCommitKey{}).(*afterCommit); ok {
		return ctx, func() {}
	}

	ac := &afterCommit{}
	flush := func() {
		ac.mtx.Lock()
		fns := ac.fns
		ac.fns = nil
		ac.mtx.Unlock()

		for _, fn := range fns {
			fn()
		}
	}
	return context.WithValue(ctx, afterCommitKey{}, ac), flush
}

// AfterCommit откладывает fn до коммита единицы работы из ctx. Вне единицы работы fn выполняется сразу.
func AfterCommit(ctx context.Context, fn func()) {
	ac, ok := ctx.Value(afterCommitKey{}).(*afterCommit)
	if !ok {
		fn()
		return
	}

	ac.mtx.Lock()
	ac.fns = append(ac.fns, fn)
	ac.mtx.Unlock()
}
