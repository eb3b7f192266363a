// Package gitinfo records the version-control state of the project under
// measurement, so a result log can be traced back to the code that
// produced it.
package gitinfo

import (
	git "github.com/go-git/go-git/v5"
)

// Info is a snapshot of the repository containing the working directory.
type Info struct {
	Commit string
	Branch string
	Dirty  bool
}

// ShortCommit returns an abbreviated commit hash for display.
func (i Info) ShortCommit() string {
	if len(i.Commit) > 8 {
		return i.Commit[:8]
	}
	return i.Commit
}

// Describe inspects the repository that contains dir, walking up parent
// directories the way git itself does. An unversioned tree returns an
// error; runs on such trees simply carry no version metadata.
func Describe(dir string) (Info, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return Info{}, err
	}

	var info Info

	// A repository without commits has no HEAD; leave those fields empty.
	head, err := repo.Head()
	if err == nil {
		info.Commit = head.Hash().String()
		if head.Name().IsBranch() {
			info.Branch = head.Name().Short()
		}
	}

	wt, err := repo.Worktree()
	if err == nil {
		status, err := wt.Status()
		if err == nil {
			info.Dirty = !status.IsClean()
		}
	}

	return info, nil
}
