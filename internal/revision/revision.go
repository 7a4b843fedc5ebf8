package revision

import (
	"fmt"

	"github.com/go-git/go-git/v5"
)

// ShortLength matches the abbreviation `git rev-parse --short` uses by default.
const ShortLength = 7

// Short returns the abbreviated hash of HEAD for the repository containing
// dir.
func Short(dir string) (string, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return "", fmt.Errorf("opening git repo: %w", err)
	}

	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("getting HEAD: %w", err)
	}

	return head.Hash().String()[:ShortLength], nil
}
