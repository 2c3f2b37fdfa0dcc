// Package core exposes the task store's operations to transports: per-session
// task tree reads and updates, and the work-info save/list/get cycle.
package core

import (
	"fmt"
	"strings"

	"github.com/xiaoyuanzhu-com/tasktree/log"
	"github.com/xiaoyuanzhu-com/tasktree/notifications"
	"github.com/xiaoyuanzhu-com/tasktree/sessions"
	"github.com/xiaoyuanzhu-com/tasktree/tasks"
	"github.com/xiaoyuanzhu-com/tasktree/workinfo"
)

// Config holds the capacities of the two caches
type Config struct {
	MaxSessions  int
	MaxWorkInfos int
}

// Service owns the session registry and the work-info cache. Instances are
// fully independent; there is no package-level state.
type Service struct {
	sessions *sessions.Registry
	works    *workinfo.Cache
	notif    *notifications.Service
}

// Stats describes cache occupancy
type Stats struct {
	Sessions        int `json:"sessions"`
	SessionCapacity int `json:"sessionCapacity"`
	WorkInfos       int `json:"workInfos"`
	WorkCapacity    int `json:"workCapacity"`
}

// NewService creates a service. notif may be nil.
func NewService(cfg Config, notif *notifications.Service) (*Service, error) {
	if notif == nil {
		notif = notifications.NewService()
	}
	s := &Service{notif: notif}

	registry, err := sessions.NewRegistry(cfg.MaxSessions, notif.NotifySessionEvicted)
	if err != nil {
		return nil, err
	}
	s.sessions = registry

	works, err := workinfo.NewCache(cfg.MaxWorkInfos, registry, workinfo.WithEvictHandler(notif.NotifyWorkEvicted))
	if err != nil {
		return nil, err
	}
	s.works = works

	return s, nil
}

// UpdateTasks reconciles the child list at path in the session's tree with
// inputs and returns the whole tree afterwards.
func (s *Service) UpdateTasks(sessionID, path string, inputs []tasks.NodeInput) ([]*tasks.Node, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}

	p := tasks.ParsePath(path)
	sess, ok := s.sessions.Peek(sessionID)
	if !ok {
		// A failed update must not create the session: insertion could evict another one.
		if len(p) > 0 {
			return nil, fmt.Errorf("update tasks at %s: %w", p, &tasks.PathNotFoundError{Segment: p[0]})
		}
		tree := tasks.NewTree()
		if err := tree.ReplaceAt(p, inputs); err != nil {
			return nil, fmt.Errorf("update tasks at %s: %w", p, err)
		}
		var created bool
		if sess, created = s.sessions.Add(sessionID, tree); created {
			log.Debug().Str("sessionId", sessionID).Int("inputs", len(inputs)).Msg("session created by update")
			s.notif.NotifyTasksUpdated(sessionID, "update")
			return sess.Snapshot(), nil
		}
		// Created concurrently; apply to the live session instead.
	}

	roots, err := sess.Update(func(t *tasks.Tree) error {
		return t.ReplaceAt(p, inputs)
	})
	if err != nil {
		return nil, fmt.Errorf("update tasks at %s: %w", p, err)
	}

	log.Debug().Str("sessionId", sessionID).Str("path", p.String()).Int("inputs", len(inputs)).Msg("tasks updated")
	s.notif.NotifyTasksUpdated(sessionID, "update")
	return roots, nil
}

// MarkTaskDone sets one task's status to DONE and returns the whole tree
func (s *Service) MarkTaskDone(sessionID, taskID string) ([]*tasks.Node, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(taskID) == "" {
		return nil, &tasks.ValidationError{Field: "taskId", Message: "must not be empty"}
	}

	sess, ok := s.sessions.Peek(sessionID)
	if !ok {
		return nil, &tasks.TaskNotFoundError{ID: taskID}
	}
	roots, err := sess.Update(func(t *tasks.Tree) error {
		return t.MarkDone(taskID)
	})
	if err != nil {
		return nil, err
	}

	log.Debug().Str("sessionId", sessionID).Str("taskId", taskID).Msg("task marked done")
	s.notif.NotifyTasksUpdated(sessionID, "done")
	return roots, nil
}

// GetAllTasks returns the session's whole tree, creating an empty one if needed
func (s *Service) GetAllTasks(sessionID string) ([]*tasks.Node, error) {
	if err := requireSession(sessionID); err != nil {
		return nil, err
	}
	if !s.sessions.Has(sessionID) {
		log.Debug().Str("sessionId", sessionID).Msg("reading tasks of a new session")
	}
	return s.sessions.GetOrCreate(sessionID).Snapshot(), nil
}

// SaveWorkInfo stores a work summary, snapshotting the session's tree when
// sessionID names a live session. See workinfo.Cache.Save.
func (s *Service) SaveWorkInfo(description, summary, sessionID string) (workinfo.SaveResult, error) {
	res, err := s.works.Save(description, summary, sessionID)
	if err != nil {
		return res, err
	}
	s.notif.NotifyWorkSaved(res.WorkID, strings.TrimSpace(sessionID), res.Overwritten)
	return res, nil
}

// GetRecentWorks lists saved work summaries, most recently used first
func (s *Service) GetRecentWorks() []workinfo.Summary {
	return s.works.ListRecent()
}

// GetWorkByID returns a saved work info and marks it most recently used
func (s *Service) GetWorkByID(workID string) (*workinfo.WorkInfo, error) {
	return s.works.Get(strings.TrimSpace(workID))
}

// Stats reports cache occupancy
func (s *Service) Stats() Stats {
	return Stats{
		Sessions:        s.sessions.Len(),
		SessionCapacity: s.sessions.Capacity(),
		WorkInfos:       s.works.Len(),
		WorkCapacity:    s.works.Capacity(),
	}
}

// Notifications returns the event service changes are published on
func (s *Service) Notifications() *notifications.Service {
	return s.notif
}

func requireSession(sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return &tasks.ValidationError{Field: "sessionId", Message: "must not be empty"}
	}
	return nil
}
