package search

import (
	"fmt"
	"sync"
)

// branchResult is the settled outcome of one retrieval branch.
type branchResult[T any] struct {
	value T
	err   error
}

// settle runs both functions concurrently and waits for both, whatever they return.
// One failing never cancels the other; a panic settles as an error.
func settle[A, B any](fa func() (A, error), fb func() (B, error)) (branchResult[A], branchResult[B]) {
	var (
		wg sync.WaitGroup
		ra branchResult[A]
		rb branchResult[B]
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		ra = run(fa)
	}()
	go func() {
		defer wg.Done()
		rb = run(fb)
	}()
	wg.Wait()
	return ra, rb
}

func run[T any](f func() (T, error)) (r branchResult[T]) {
	defer func() {
		if p := recover(); p != nil {
			r.err = fmt.Errorf("branch panic: %v", p)
		}
	}()
	r.value, r.err = f()
	return r
}
