package store

import (
	"context"
	"fmt"

	"studio-booking-backend/internal/model"
	"studio-booking-backend/internal/timeutil"
)

func (s *gormStore) ListRules(ctx context.Context, studioID string) ([]model.AvailabilityRule, error) {
	var rules []model.AvailabilityRule
	err := s.db.WithContext(ctx).
		Where("studio_id = ?", studioID).
		Order("created_at ASC").
		Find(&rules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load availability rules: %w", err)
	}
	return rules, nil
}

func (s *gormStore) CreateRule(ctx context.Context, rule *model.AvailabilityRule) error {
	if err := validateRule(rule); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(rule).Error; err != nil {
		return fmt.Errorf("failed to create rule: %w", err)
	}
	return nil
}

func (s *gormStore) DeleteRule(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.AvailabilityRule{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete rule: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: rule %s", ErrNotFound, id)
	}
	return nil
}

// validateRule enforces the rule-type invariants: weekly rules carry a
// weekday, exception rules carry a date, and both times parse as HH:MM with
// start before end.
func validateRule(rule *model.AvailabilityRule) error {
	switch rule.RuleType {
	case model.RuleTypeWeekly:
		if rule.Weekday == nil || *rule.Weekday < 0 || *rule.Weekday > 6 {
			return fmt.Errorf("%w: weekly rules require a weekday between 0 and 6", ErrInvalid)
		}
	case model.RuleTypeException:
		if rule.Date == nil || !timeutil.ValidDate(*rule.Date) {
			return fmt.Errorf("%w: exception rules require a date (YYYY-MM-DD)", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: unknown rule type %q", ErrInvalid, rule.RuleType)
	}

	start, err := timeutil.ParseClock(rule.StartTime)
	if err != nil {
		return fmt.Errorf("%w: start_time: %v", ErrInvalid, err)
	}
	end, err := timeutil.ParseClock(rule.EndTime)
	if err != nil {
		return fmt.Errorf("%w: end_time: %v", ErrInvalid, err)
	}
	if end <= start {
		return fmt.Errorf("%w: end_time must be after start_time", ErrInvalid)
	}
	return nil
}
