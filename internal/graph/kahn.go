package graph

import (
	"container/list"
	"fmt"
	"strings"
)

// processingQueue wraps a list-based FIFO for Kahn's algorithm.
type processingQueue struct {
	queue *list.List
}

func newProcessingQueue() *processingQueue {
	return &processingQueue{queue: list.New()}
}

func (pq *processingQueue) enqueue(node string) {
	pq.queue.PushBack(node)
}

func (pq *processingQueue) dequeue() (string, bool) {
	if pq.queue.Len() == 0 {
		return "", false
	}
	elem := pq.queue.Front()
	pq.queue.Remove(elem)
	return elem.Value.(string), true
}

func (pq *processingQueue) isEmpty() bool {
	return pq.queue.Len() == 0
}

// calculateInDegrees computes the number of incoming edges for each table.
func (g *DependencyGraph) calculateInDegrees() map[string]int {
	inDegree := make(map[string]int)
	for name := range g.tables {
		inDegree[name] = 0
	}
	for parent := range g.Children {
		for _, child := range g.ChildrenOf(parent) {
			inDegree[child]++
		}
	}
	return inDegree
}

// CycleInfo describes why topological processing could not complete.
type CycleInfo struct {
	TotalNodes        int
	ProcessedNodes    int
	UnprocessedNodes  []string
	CycleParticipants []string
	CyclePath         []string
}

// CycleError reports a cycle found while diagnosing the dependency graph.
type CycleError struct {
	Info *CycleInfo
}

func (e *CycleError) Error() string {
	msg := fmt.Sprintf("cycle detected in dependency graph: %d of %d tables could not be topologically ordered",
		len(e.Info.UnprocessedNodes), e.Info.TotalNodes)

	if len(e.Info.CyclePath) > 0 {
		msg += fmt.Sprintf("\ncycle path: %s", strings.Join(e.Info.CyclePath, " -> "))
	}
	if len(e.Info.CycleParticipants) > 0 {
		msg += fmt.Sprintf("\ntables in cycle: %s", strings.Join(e.Info.CycleParticipants, ", "))
	}

	return msg
}

// detectIncompleteProcessing runs Kahn's algorithm and reports any tables
// that couldn't be ordered because they sit on or behind a cycle.
func (g *DependencyGraph) detectIncompleteProcessing() *CycleInfo {
	inDegree := g.calculateInDegrees()
	queue := newProcessingQueue()
	for name, degree := range inDegree {
		if degree == 0 {
			queue.enqueue(name)
		}
	}

	processed := make(map[string]bool)
	for !queue.isEmpty() {
		node, _ := queue.dequeue()
		processed[node] = true
		for _, child := range g.ChildrenOf(node) {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue.enqueue(child)
			}
		}
	}

	if len(processed) == len(g.tables) {
		return nil
	}

	var unprocessed []string
	for name := range g.tables {
		if !processed[name] {
			unprocessed = append(unprocessed, name)
		}
	}

	unprocessedSet := make(map[string]bool, len(unprocessed))
	for _, node := range unprocessed {
		unprocessedSet[node] = true
	}

	var participants []string
	for _, node := range unprocessed {
		if g.canReachSelf(node, unprocessedSet) {
			participants = append(participants, node)
		}
	}

	var cyclePath []string
	if len(participants) > 0 {
		cyclePath = g.findCyclePath(participants[0], unprocessedSet)
	}

	return &CycleInfo{
		TotalNodes:        len(g.tables),
		ProcessedNodes:    len(processed),
		UnprocessedNodes:  unprocessed,
		CycleParticipants: participants,
		CyclePath:         cyclePath,
	}
}

// HasCycle reports whether the dependency graph contains a cycle.
func (g *DependencyGraph) HasCycle() bool {
	return g.detectIncompleteProcessing() != nil
}

func (g *DependencyGraph) findCyclePath(start string, allowed map[string]bool) []string {
	visited := make(map[string]bool)
	path := []string{start}
	if g.dfsFindPath(start, start, visited, allowed, &path) {
		return path
	}
	return nil
}

func (g *DependencyGraph) dfsFindPath(current, target string, visited, allowed map[string]bool, path *[]string) bool {
	for _, child := range g.ChildrenOf(current) {
		if !allowed[child] {
			continue
		}
		if child == target {
			*path = append(*path, target)
			return true
		}
		if visited[child] {
			continue
		}
		visited[child] = true
		*path = append(*path, child)
		if g.dfsFindPath(child, target, visited, allowed, path) {
			return true
		}
		*path = (*path)[:len(*path)-1]
	}
	return false
}

func (g *DependencyGraph) canReachSelf(start string, allowed map[string]bool) bool {
	visited := make(map[string]bool)
	return g.dfsCanReach(start, start, visited, allowed, true)
}

func (g *DependencyGraph) dfsCanReach(current, target string, visited, allowed map[string]bool, isStart bool) bool {
	if current == target && !isStart {
		return true
	}
	if visited[current] || !allowed[current] {
		return false
	}
	visited[current] = true
	for _, child := range g.ChildrenOf(current) {
		if g.dfsCanReach(child, target, visited, allowed, false) {
			return true
		}
	}
	return false
}

// TopologicalSort returns tables in dependency order (parents before
// children). Returns a CycleError if the graph contains a cycle.
func (g *DependencyGraph) TopologicalSort() ([]string, error) {
	inDegree := g.calculateInDegrees()
	queue := newProcessingQueue()
	for name, degree := range inDegree {
		if degree == 0 {
			queue.enqueue(name)
		}
	}

	var result []string
	for !queue.isEmpty() {
		node, _ := queue.dequeue()
		result = append(result, node)
		for _, child := range g.ChildrenOf(node) {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue.enqueue(child)
			}
		}
	}

	if len(result) != len(g.tables) {
		return nil, &CycleError{Info: g.detectIncompleteProcessing()}
	}
	return result, nil
}
