package service

import (
	"classroomlive/internal/cache"
	"classroomlive/internal/model"
	"classroomlive/internal/repository"
	"context"
	"fmt"
)

// AccessGuard answers authorization questions for classroom operations.
// The predicates fail closed: lookup errors and missing entities both
// read as "not authorized". Checks re-run on every state-changing
// operation since connections are long-lived and enrollment is mutable.
type AccessGuard struct {
	classrooms repository.ClassroomRepo
	directory  repository.DirectoryRepo
	contexts   cache.ContextCache // optional
}

func NewAccessGuard(
	classrooms repository.ClassroomRepo,
	directory repository.DirectoryRepo,
	contexts cache.ContextCache,
) *AccessGuard {
	return &AccessGuard{
		classrooms: classrooms,
		directory:  directory,
		contexts:   contexts,
	}
}

// Context resolves the classroom's session/course/teacher chain,
// consulting the cache first.
func (g *AccessGuard) Context(ctx context.Context, classroomID string) (*model.ClassroomContext, error) {
	if g.contexts != nil {
		if cc, err := g.contexts.Get(ctx, classroomID); err == nil && cc != nil {
			return cc, nil
		}
	}

	classroom, err := g.classrooms.GetByID(ctx, classroomID)
	if err != nil {
		return nil, fmt.Errorf("resolve classroom: %w", err)
	}
	if classroom == nil {
		return nil, nil
	}

	info, err := g.directory.ResolveSession(ctx, classroom.SessionID)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}
	if info == nil {
		return nil, nil
	}

	cc := &model.ClassroomContext{
		ClassroomID: classroomID,
		SessionID:   classroom.SessionID,
		CourseID:    info.CourseID,
		TeacherID:   info.TeacherID,
	}
	if g.contexts != nil {
		_ = g.contexts.Set(ctx, classroomID, cc)
	}
	return cc, nil
}

// IsTeacher reports whether the user teaches the classroom's course.
func (g *AccessGuard) IsTeacher(ctx context.Context, userID, classroomID string) bool {
	cc, err := g.Context(ctx, classroomID)
	if err != nil || cc == nil {
		return false
	}
	return cc.TeacherID == userID
}

// IsEnrolled reports whether the user has an active course enrollment
// and a confirmed session enrollment for the classroom's session.
func (g *AccessGuard) IsEnrolled(ctx context.Context, userID, classroomID string) bool {
	cc, err := g.Context(ctx, classroomID)
	if err != nil || cc == nil {
		return false
	}

	active, err := g.directory.IsActiveEnrollment(ctx, userID, cc.CourseID)
	if err != nil || !active {
		return false
	}
	confirmed, err := g.directory.IsConfirmedSessionEnrollment(ctx, userID, cc.SessionID)
	if err != nil {
		return false
	}
	return confirmed
}

// CanJoin reports whether the user may enter the classroom at all.
func (g *AccessGuard) CanJoin(ctx context.Context, userID, classroomID string) bool {
	return g.IsTeacher(ctx, userID, classroomID) || g.IsEnrolled(ctx, userID, classroomID)
}
