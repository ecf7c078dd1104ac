package qubesite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
	"github.com/go-git/go-git/v6/storage/memory"
)

type Release struct {
	Tag          string
	Version      *semver.Version
	IsPrerelease bool
	Date         time.Time
	Subject      string
}

// ReleasesPage is the contents of the download page.
type ReleasesPage struct {
	Repository string
	Latest     *Release
	Releases   []*Release
}

// WriteReleases writes the release listing that is placed in the content
// container of the download page.
func WriteReleases(w io.Writer, page ReleasesPage) error {
	return execute(w, "releases", page)
}

// CollectReleases clones the repository into memory and lists all tags that
// are semantic versions prefixed with "v", newest first.
func CollectReleases(
	ctx context.Context, conf ReleasesConfig,
) (*ReleasesPage, error) {
	repo, err := git.CloneContext(ctx, memory.NewStorage(), nil, &git.CloneOptions{
		URL:      conf.Clone,
		Progress: os.Stderr,
	})
	if err != nil {
		return nil, fmt.Errorf("git clone: %w", err)
	}

	page := ReleasesPage{
		Repository: conf.Clone,
	}

	tagsRefs, err := repo.Tags()
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}

	err = tagsRefs.ForEach(func(tagRef *plumbing.Reference) error {
		err := ctx.Err()
		if err != nil {
			return err
		}

		name := tagRef.Name().Short()
		if !strings.HasPrefix(name, "v") {
			return nil
		}

		version, err := semver.NewVersion(name)
		if err != nil {
			slog.Warn("skipping tag that isn't a valid version",
				"tag", name, "err", err)

			return nil
		}

		commit, message, err := resolveTag(repo, tagRef)
		if err != nil {
			return fmt.Errorf("resolve tag %q: %w", name, err)
		}

		page.Releases = append(page.Releases, &Release{
			Tag:          name,
			Version:      version,
			IsPrerelease: version.Prerelease() != "",
			Date:         commit.Committer.When,
			Subject:      subject(message),
		})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collect version tags: %w", err)
	}

	slices.SortFunc(page.Releases, func(a, b *Release) int {
		return b.Version.Compare(a.Version)
	})

	for _, r := range page.Releases {
		if r.IsPrerelease {
			continue
		}

		page.Latest = r

		break
	}

	return &page, nil
}

// resolveTag returns the tagged commit and the tag message, or the commit
// message for lightweight tags.
func resolveTag(
	repo *git.Repository, tagRef *plumbing.Reference,
) (*object.Commit, string, error) {
	t, err := repo.TagObject(tagRef.Hash())

	switch {
	case errors.Is(err, plumbing.ErrObjectNotFound):
		c, err := repo.CommitObject(tagRef.Hash())
		if err != nil {
			return nil, "", fmt.Errorf("get tag commit: %w", err)
		}

		return c, c.Message, nil
	case err != nil:
		return nil, "", fmt.Errorf("get tag object: %w", err)
	}

	c, err := t.Commit()
	if err != nil {
		return nil, "", fmt.Errorf("get tag commit: %w", err)
	}

	message := t.Message
	if strings.TrimSpace(message) == "" {
		message = c.Message
	}

	return c, message, nil
}

func subject(message string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(message), "\n")

	return strings.TrimSpace(line)
}
