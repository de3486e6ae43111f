package provider

import (
	"errors"
	"fmt"

	"github.com/minios-linux/txdict/batch"
	"github.com/minios-linux/txdict/dictionary"
	"github.com/minios-linux/txdict/format"
	"github.com/minios-linux/txdict/location"
)

// target pairs a fragment's location with its backup handle.
type target struct {
	loc    location.Location
	backup location.Backup
}

func (t target) String() string { return t.loc.String() }

func targetsOf(instructions []format.SerializeInstruction) []target {
	targets := make([]target, len(instructions))
	for i, in := range instructions {
		targets[i] = target{loc: in.Location, backup: in.Location.QueryBackup()}
	}
	return targets
}

// filterTargets returns the targets for which keep returns true.
func filterTargets(targets []target, keep func(target) bool) []target {
	var result []target
	for _, t := range targets {
		if keep(t) {
			result = append(result, t)
		}
	}
	return result
}

// Save writes tr to loc in format v. Every fragment target that exists is
// backed up first; if any fragment fails, all backed-up targets are
// restored and the error lists every failed fragment. Backups are removed
// after a successful save and after a successful restore.
func (p *Provider) Save(tr *dictionary.Translation, loc location.Location, v format.Version) error {
	instructions, err := p.SaveTo(tr, loc, v)
	if err != nil {
		return err
	}
	return p.write(instructions)
}

// write executes instructions with backup and rollback.
func (p *Provider) write(instructions []format.SerializeInstruction) error {
	targets := targetsOf(instructions)

	// Nothing is modified until every target is known to be writable.
	if err := batch.Join("check", batch.Run(targets, func(t target) error {
		return t.loc.CanSave()
	}), nil); err != nil {
		return err
	}

	// Leftovers of an earlier failed save.
	stale := filterTargets(targets, func(t target) bool {
		return t.backup != nil && t.backup.CanCleanBackup() == nil
	})
	if err := batch.Join("clean stale backup", batch.Run(stale, func(t target) error {
		return t.backup.CleanBackup()
	}), nil); err != nil {
		return err
	}

	existing := filterTargets(targets, func(t target) bool { return t.loc.CanLoad() == nil })
	backupFailures := batch.Run(existing, func(t target) error {
		if t.backup == nil {
			return fmt.Errorf("%s: %w", t.loc, location.ErrBackupUnavailable)
		}
		return t.backup.Backup()
	})
	if err := batch.Join("backup", backupFailures, nil); err != nil {
		failed := newTargetSet(batch.Items(backupFailures))
		p.clean(filterTargets(existing, func(t target) bool { return !failed[t.loc.ID()] }))
		return err
	}

	saveErr := batch.Join("save", batch.Run(instructions, func(in format.SerializeInstruction) error {
		return in.Execute()
	}), nil)
	if saveErr == nil {
		p.clean(existing)
		return nil
	}

	restorable := filterTargets(targets, func(t target) bool {
		return t.backup != nil && t.backup.CanRestore() == nil
	})
	restoreFailures := batch.Run(restorable, func(t target) error {
		return t.backup.Restore()
	})
	restoreErr := batch.Join("restore", restoreFailures, nil)
	if restoreErr != nil {
		p.reporter.Warnf("%v", restoreErr)
	}
	// Backups that could not be restored stay on disk.
	failed := newTargetSet(batch.Items(restoreFailures))
	p.clean(filterTargets(restorable, func(t target) bool { return !failed[t.loc.ID()] }))

	return errors.Join(saveErr, restoreErr)
}

// clean removes the backups of targets, reporting failures.
func (p *Provider) clean(targets []target) {
	failures := batch.Run(targets, func(t target) error {
		return t.backup.CleanBackup()
	})
	if err := batch.Join("clean backup", failures, nil); err != nil {
		p.reporter.Warnf("%v", err)
	}
}

func newTargetSet(targets []target) map[string]bool {
	s := make(map[string]bool, len(targets))
	for _, t := range targets {
		s[t.loc.ID()] = true
	}
	return s
}
