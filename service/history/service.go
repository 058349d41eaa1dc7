package history

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/signoffhq/signoff/internal/clock"
	"github.com/signoffhq/signoff/internal/idgen"
	"github.com/signoffhq/signoff/model"
	"github.com/signoffhq/signoff/service/approval"
	"github.com/signoffhq/signoff/service/history/commit"
	"github.com/signoffhq/signoff/service/messaging"
	qmem "github.com/signoffhq/signoff/service/messaging/memory"
)

// Service owns the commit DAG and every branch, tag and merge request built
// on top of it. One instance per repository; all operations are safe for
// concurrent use and either complete fully or leave the store untouched.
type Service struct {
	mu sync.RWMutex

	defaultBranch string
	current       string
	branches      map[string]*Branch
	commits       map[string]*commit.Commit
	tags          map[string]*Tag
	mergeRequests map[string]*MergeRequest

	// states holds the approval-state projection after each commit, keyed by
	// commit id, so new commits diff against the head's projection.
	states map[string]*commit.State

	events messaging.Queue[Event]
}

// New creates an empty repository with a default branch.
func New(options ...Option) *Service {
	now := clock.Now()
	ret := &Service{
		defaultBranch: "main",
		branches:      map[string]*Branch{},
		commits:       map[string]*commit.Commit{},
		tags:          map[string]*Tag{},
		mergeRequests: map[string]*MergeRequest{},
		states:        map[string]*commit.State{},
		events:        qmem.NewQueue[Event](qmem.NotifyConfig()),
	}
	for _, option := range options {
		option(ret)
	}
	ret.current = ret.defaultBranch
	ret.branches[ret.defaultBranch] = &Branch{
		Name:      ret.defaultBranch,
		Protected: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return ret
}

/* ---------------- commits ---------------------------------------------- */

// CreateCommit appends a decision to the current branch. The parent list is
// [head] when the branch has one, empty otherwise.
func (s *Service) CreateCommit(ctx context.Context, response *approval.Response, author, message string, options ...commit.Option) (*commit.Commit, error) {
	s.mu.Lock()
	branch := s.branches[s.current]
	var parents []string
	previous := commit.NewState()
	if branch.Head != "" {
		parents = []string{branch.Head}
		previous = s.stateAt(branch.Head)
	}
	c := commit.New(response, parents, author, message, previous, options...)
	s.commits[c.ID] = c
	s.states[c.ID] = previous.Apply(response)
	branch.Head = c.ID
	branch.Commits = append(branch.Commits, c.ID)
	branch.UpdatedAt = clock.Now()
	s.mu.Unlock()

	s.publish(ctx, TopicCommitCreated, c)
	return c, nil
}

// GetCommit returns one commit by id or abbreviated id prefix.
func (s *Service) GetCommit(id string) (*commit.Commit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookupCommit(id)
}

// lookupCommit resolves an exact id first, then a unique prefix. Callers hold
// the lock.
func (s *Service) lookupCommit(id string) (*commit.Commit, error) {
	if c, ok := s.commits[id]; ok {
		return c, nil
	}
	var found *commit.Commit
	if len(id) >= 4 {
		for cid, c := range s.commits {
			if strings.HasPrefix(cid, id) {
				if found != nil {
					return nil, fmt.Errorf("commit %q is ambiguous: %w", id, ErrConflict)
				}
				found = c
			}
		}
	}
	if found == nil {
		return nil, fmt.Errorf("commit %q: %w", id, ErrNotFound)
	}
	return found, nil
}

// RevertCommit records the inverse of an earlier decision: a new commit with
// the approved flag flipped, parented on the current branch head. With
// noCommit the constructed commit is returned without mutating the store.
func (s *Service) RevertCommit(ctx context.Context, id string, noCommit bool) (*commit.Commit, error) {
	s.mu.Lock()
	original, err := s.lookupCommit(id)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}

	var response approval.Response
	if original.Response != nil {
		response = *original.Response
	}
	response.Approved = !response.Approved
	response.Timestamp = clock.Now()
	message := fmt.Sprintf("Revert %q", original.Message)

	branch := s.branches[s.current]
	var parents []string
	previous := commit.NewState()
	if branch.Head != "" {
		parents = []string{branch.Head}
		previous = s.stateAt(branch.Head)
	}
	reverted := commit.New(&response, parents, original.Author, message, previous,
		commit.WithRiskLevel(original.RiskLevel), commit.WithCategory(original.Category))
	if noCommit {
		s.mu.Unlock()
		return reverted, nil
	}

	s.commits[reverted.ID] = reverted
	s.states[reverted.ID] = previous.Apply(&response)
	branch.Head = reverted.ID
	branch.Commits = append(branch.Commits, reverted.ID)
	branch.UpdatedAt = clock.Now()
	s.mu.Unlock()

	s.publish(ctx, TopicCommitCreated, reverted)
	return reverted, nil
}

/* ---------------- branches --------------------------------------------- */

// CreateBranch adds a branch pointing at base, which defaults to the current
// head. Fails with Conflict on a name already present.
func (s *Service) CreateBranch(ctx context.Context, name, base string) (*Branch, error) {
	if name == "" {
		return nil, fmt.Errorf("branch name is empty: %w", ErrState)
	}
	s.mu.Lock()
	if _, ok := s.branches[name]; ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("branch %q already exists: %w", name, ErrConflict)
	}
	source := s.branches[s.current]
	if base == "" {
		base = source.Head
	}
	var path []string
	if base != "" {
		if _, ok := s.commits[base]; !ok {
			s.mu.Unlock()
			return nil, fmt.Errorf("base commit %q: %w", base, ErrNotFound)
		}
		if source.contains(base) {
			path = pathUpTo(source.Commits, base)
		} else {
			// Base sits outside the current branch; rebuild the path from its
			// ancestry so the new branch always contains its own head.
			path = s.ancestryPath(base)
		}
	}
	now := clock.Now()
	branch := &Branch{
		Name:      name,
		Head:      base,
		Base:      base,
		Commits:   path,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.branches[name] = branch
	s.mu.Unlock()

	s.publish(ctx, TopicBranchCreated, branch)
	return branch, nil
}

// CheckoutBranch makes the named branch current.
func (s *Service) CheckoutBranch(ctx context.Context, name string) (*Branch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	branch, ok := s.branches[name]
	if !ok {
		return nil, fmt.Errorf("branch %q: %w", name, ErrNotFound)
	}
	s.current = name
	return branch, nil
}

// DeleteBranch removes a branch pointer. The default branch can never be
// deleted; a protected branch or one with commits unreachable from the
// default branch requires force.
func (s *Service) DeleteBranch(ctx context.Context, name string, force bool) error {
	s.mu.Lock()
	branch, ok := s.branches[name]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("branch %q: %w", name, ErrNotFound)
	}
	if name == s.defaultBranch {
		s.mu.Unlock()
		return fmt.Errorf("cannot delete default branch %q: %w", name, ErrConflict)
	}
	if branch.Protected && !force {
		s.mu.Unlock()
		return fmt.Errorf("branch %q is protected: %w", name, ErrConflict)
	}
	if !force && s.hasUnmergedChanges(branch) {
		s.mu.Unlock()
		return fmt.Errorf("branch %q has unmerged changes: %w", name, ErrConflict)
	}
	delete(s.branches, name)
	if s.current == name {
		s.current = s.defaultBranch
	}
	s.mu.Unlock()

	s.publish(ctx, TopicBranchDeleted, branch)
	return nil
}

// hasUnmergedChanges reports whether the branch path holds commits absent
// from the default branch path. Callers hold the lock.
func (s *Service) hasUnmergedChanges(branch *Branch) bool {
	base := s.branches[s.defaultBranch]
	for _, id := range branch.Commits {
		if !base.contains(id) {
			return true
		}
	}
	return false
}

// ListBranches returns branches sorted by name, optionally filtered by their
// merged state relative to the default branch.
func (s *Service) ListBranches(filter *BranchFilter) []*Branch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Branch
	for _, branch := range s.branches {
		if filter != nil {
			unmerged := s.hasUnmergedChanges(branch)
			if filter.Merged && unmerged {
				continue
			}
			if filter.Unmerged && !unmerged {
				continue
			}
		}
		out = append(out, branch)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// CurrentBranch returns the checked-out branch.
func (s *Service) CurrentBranch() *Branch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.branches[s.current]
}

/* ---------------- merge requests and merging ---------------------------- */

// CreateMergeRequest opens a pending merge request from source into target,
// carrying the source commits absent from target.
func (s *Service) CreateMergeRequest(ctx context.Context, title, source, target string) (*MergeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sourceBranch, ok := s.branches[source]
	if !ok {
		return nil, fmt.Errorf("source branch %q: %w", source, ErrNotFound)
	}
	targetBranch, ok := s.branches[target]
	if !ok {
		return nil, fmt.Errorf("target branch %q: %w", target, ErrNotFound)
	}

	var commits []string
	for _, id := range sourceBranch.Commits {
		if !targetBranch.contains(id) {
			commits = append(commits, id)
		}
	}
	now := clock.Now()
	mr := &MergeRequest{
		ID:        idgen.New(),
		Title:     title,
		Source:    source,
		Target:    target,
		Commits:   commits,
		Status:    MRPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if len(commits) == 0 {
		mr.Status = MRDraft
	}
	s.mergeRequests[mr.ID] = mr
	sourceBranch.MergeRequests = append(sourceBranch.MergeRequests, mr.ID)
	return mr, nil
}

// GetMergeRequest returns one merge request by id.
func (s *Service) GetMergeRequest(id string) (*MergeRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mr, ok := s.mergeRequests[id]
	if !ok {
		return nil, fmt.Errorf("merge request %q: %w", id, ErrNotFound)
	}
	return mr, nil
}

// AddReview records a reviewer entry and moves the request to approved or
// rejected. Reviews on merged or closed requests fail.
func (s *Service) AddReview(ctx context.Context, id string, review Review) (*MergeRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mr, ok := s.mergeRequests[id]
	if !ok {
		return nil, fmt.Errorf("merge request %q: %w", id, ErrNotFound)
	}
	if mr.Status == MRMerged || mr.Status == MRClosed {
		return nil, fmt.Errorf("merge request %q is %s: %w", id, mr.Status, ErrState)
	}
	if review.At.IsZero() {
		review.At = clock.Now()
	}
	mr.Reviews = append(mr.Reviews, review)
	if review.Approved {
		mr.Status = MRApproved
	} else {
		mr.Status = MRRejected
	}
	mr.UpdatedAt = clock.Now()
	return mr, nil
}

// MergeBranch joins source into target with a merge commit whose parents are
// [targetHead, sourceHead]; a side with no commits contributes no parent.
// Open merge requests between the two branches transition to merged.
func (s *Service) MergeBranch(ctx context.Context, source, target string) (*commit.Commit, error) {
	s.mu.Lock()
	sourceBranch, ok := s.branches[source]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("source branch %q: %w", source, ErrNotFound)
	}
	targetBranch, ok := s.branches[target]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("target branch %q: %w", target, ErrNotFound)
	}
	// Equal heads cover the both-empty case and would otherwise mint a merge
	// commit with duplicate parents.
	if sourceBranch.Head == targetBranch.Head {
		s.mu.Unlock()
		return nil, fmt.Errorf("nothing to merge between %q and %q: %w", source, target, ErrState)
	}

	var parents []string
	previous := commit.NewState()
	if targetBranch.Head != "" {
		parents = append(parents, targetBranch.Head)
		previous = s.stateAt(targetBranch.Head)
	}
	if sourceBranch.Head != "" {
		parents = append(parents, sourceBranch.Head)
		if targetBranch.Head == "" {
			previous = s.stateAt(sourceBranch.Head)
		}
	}

	response := &approval.Response{
		Action:    approval.ActionApprove,
		Approved:  true,
		Comment:   fmt.Sprintf("merge %s into %s", source, target),
		Timestamp: clock.Now(),
	}
	merge := commit.New(response, parents, "signoff",
		fmt.Sprintf("Merge branch %q into %q", source, target), previous,
		commit.WithTags("merge"), commit.WithRiskLevel(model.RiskLow))

	s.commits[merge.ID] = merge
	s.states[merge.ID] = previous.Apply(response)
	for _, id := range sourceBranch.Commits {
		if !targetBranch.contains(id) {
			targetBranch.Commits = append(targetBranch.Commits, id)
		}
	}
	targetBranch.Head = merge.ID
	targetBranch.Commits = append(targetBranch.Commits, merge.ID)
	targetBranch.UpdatedAt = clock.Now()

	for _, mr := range s.mergeRequests {
		if mr.Source == source && mr.Target == target && mr.Status != MRMerged && mr.Status != MRClosed {
			mr.Status = MRMerged
			mr.UpdatedAt = clock.Now()
		}
	}
	s.mu.Unlock()

	s.publish(ctx, TopicCommitCreated, merge)
	s.publish(ctx, TopicMergeCompleted, merge)
	return merge, nil
}

/* ---------------- tags -------------------------------------------------- */

// CreateTag names a commit. The commit id defaults to the current head;
// overwriting an existing tag requires force.
func (s *Service) CreateTag(ctx context.Context, name, commitID string, force bool) (*Tag, error) {
	if name == "" {
		return nil, fmt.Errorf("tag name is empty: %w", ErrState)
	}
	s.mu.Lock()
	if _, ok := s.tags[name]; ok && !force {
		s.mu.Unlock()
		return nil, fmt.Errorf("tag %q already exists: %w", name, ErrConflict)
	}
	if commitID == "" {
		commitID = s.branches[s.current].Head
		if commitID == "" {
			s.mu.Unlock()
			return nil, fmt.Errorf("no commit to tag on branch %q: %w", s.current, ErrState)
		}
	}
	target, err := s.lookupCommit(commitID)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	tag := &Tag{Name: name, CommitID: target.ID, CreatedAt: clock.Now()}
	s.tags[name] = tag
	s.mu.Unlock()

	s.publish(ctx, TopicTagCreated, tag)
	return tag, nil
}

// DeleteTag removes a tag by name.
func (s *Service) DeleteTag(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tags[name]; !ok {
		return fmt.Errorf("tag %q: %w", name, ErrNotFound)
	}
	delete(s.tags, name)
	return nil
}

// ListTags returns tags sorted by name.
func (s *Service) ListTags() []*Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Tag, 0, len(s.tags))
	for _, tag := range s.tags {
		out = append(out, tag)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

/* ---------------- queries ----------------------------------------------- */

// Log returns commits newest-first, narrowed by the filter. The branch
// defaults to the current one.
func (s *Service) Log(filter *LogFilter) ([]*commit.Commit, error) {
	if filter == nil {
		filter = &LogFilter{}
	}
	var messageRe *regexp.Regexp
	if filter.Message != "" {
		var err error
		if messageRe, err = regexp.Compile(filter.Message); err != nil {
			return nil, fmt.Errorf("invalid message filter: %w", err)
		}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	name := filter.Branch
	if name == "" {
		name = s.current
	}
	branch, ok := s.branches[name]
	if !ok {
		return nil, fmt.Errorf("branch %q: %w", name, ErrNotFound)
	}

	// Walk the path newest-first so timestamp ties keep append order.
	var out []*commit.Commit
	for i := len(branch.Commits) - 1; i >= 0; i-- {
		c, ok := s.commits[branch.Commits[i]]
		if !ok {
			continue
		}
		if filter.Author != "" && !strings.Contains(c.Author, filter.Author) {
			continue
		}
		if messageRe != nil && !messageRe.MatchString(c.Message) {
			continue
		}
		if filter.Since != nil && c.Timestamp.Before(*filter.Since) {
			continue
		}
		if filter.Until != nil && c.Timestamp.After(*filter.Until) {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

// FindCommonAncestor walks parent links breadth-first from both commits and
// returns the first id present in both walks. Unmemoized; adequate for
// shallow histories only.
func (s *Service) FindCommonAncestor(a, b string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	first, err := s.lookupCommit(a)
	if err != nil {
		return "", err
	}
	second, err := s.lookupCommit(b)
	if err != nil {
		return "", err
	}

	reachable := map[string]bool{}
	for queue := []string{first.ID}; len(queue) > 0; {
		id := queue[0]
		queue = queue[1:]
		if reachable[id] {
			continue
		}
		reachable[id] = true
		if c, ok := s.commits[id]; ok {
			queue = append(queue, c.Parents...)
		}
	}

	visited := map[string]bool{}
	for queue := []string{second.ID}; len(queue) > 0; {
		id := queue[0]
		queue = queue[1:]
		if visited[id] {
			continue
		}
		visited[id] = true
		if reachable[id] {
			return id, nil
		}
		if c, ok := s.commits[id]; ok {
			queue = append(queue, c.Parents...)
		}
	}
	return "", fmt.Errorf("no common ancestor of %q and %q: %w", a, b, ErrNotFound)
}

// GetStatistics summarises the store content.
func (s *Service) GetStatistics() *Statistics {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ret := &Statistics{
		Commits:       len(s.commits),
		Branches:      len(s.branches),
		Tags:          len(s.tags),
		MergeRequests: len(s.mergeRequests),
		PerAuthor:     map[string]int{},
	}
	for _, c := range s.commits {
		ret.PerAuthor[c.Author]++
		if c.IsMerge() {
			ret.Merges++
		}
		if c.Response != nil {
			if c.Response.Approved {
				ret.Approved++
			} else {
				ret.Rejected++
			}
		}
	}
	return ret
}

// GetStatus reports the current branch, its head and open merge requests.
func (s *Service) GetStatus() *Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	branch := s.branches[s.current]
	pending := 0
	for _, mr := range s.mergeRequests {
		if mr.Status == MRPending || mr.Status == MRDraft || mr.Status == MRApproved {
			pending++
		}
	}
	return &Status{
		Branch:    branch.Name,
		Head:      branch.Head,
		Commits:   len(branch.Commits),
		PendingMR: pending,
	}
}

/* ---------------- snapshot ---------------------------------------------- */

// Export returns a deep copy of the repository aggregate.
func (s *Service) Export() *Repository {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ret := &Repository{
		DefaultBranch: s.defaultBranch,
		Current:       s.current,
		Branches:      map[string]*Branch{},
		Commits:       map[string]*commit.Commit{},
		Tags:          map[string]*Tag{},
		MergeRequests: map[string]*MergeRequest{},
		States:        map[string]*commit.State{},
	}
	for name, branch := range s.branches {
		copied := *branch
		copied.Commits = append([]string(nil), branch.Commits...)
		copied.MergeRequests = append([]string(nil), branch.MergeRequests...)
		ret.Branches[name] = &copied
	}
	for id, c := range s.commits {
		copied := *c
		copied.Parents = append([]string(nil), c.Parents...)
		copied.Tags = append([]string(nil), c.Tags...)
		ret.Commits[id] = &copied
	}
	for name, tag := range s.tags {
		copied := *tag
		ret.Tags[name] = &copied
	}
	for id, mr := range s.mergeRequests {
		copied := *mr
		copied.Commits = append([]string(nil), mr.Commits...)
		copied.Reviews = append([]Review(nil), mr.Reviews...)
		ret.MergeRequests[id] = &copied
	}
	for id, state := range s.states {
		ret.States[id] = state.Clone()
	}
	return ret
}

// Import replaces the store content with the snapshot.
func (s *Service) Import(repository *Repository) error {
	if repository == nil || repository.DefaultBranch == "" {
		return fmt.Errorf("invalid repository snapshot: %w", ErrState)
	}
	if _, ok := repository.Branches[repository.DefaultBranch]; !ok {
		return fmt.Errorf("snapshot default branch %q missing: %w", repository.DefaultBranch, ErrState)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defaultBranch = repository.DefaultBranch
	s.current = repository.Current
	if s.current == "" {
		s.current = s.defaultBranch
	}
	s.branches = repository.Branches
	s.commits = repository.Commits
	s.tags = repository.Tags
	s.mergeRequests = repository.MergeRequests
	s.states = repository.States
	if s.tags == nil {
		s.tags = map[string]*Tag{}
	}
	if s.mergeRequests == nil {
		s.mergeRequests = map[string]*MergeRequest{}
	}
	if s.states == nil {
		s.states = map[string]*commit.State{}
	}
	return nil
}

/* ---------------- plumbing ---------------------------------------------- */

// Queue exposes the notification queue for listeners.
func (s *Service) Queue() messaging.Queue[Event] { return s.events }

func (s *Service) publish(ctx context.Context, topic string, data interface{}) {
	_ = s.events.Publish(ctx, &Event{Topic: topic, Data: data})
}

// stateAt returns the projection after the given commit; imports without
// state records fall back to the initial projection. Callers hold the lock.
func (s *Service) stateAt(id string) *commit.State {
	if state := s.states[id]; state != nil {
		return state
	}
	return commit.NewState()
}

// ancestryPath follows first parents from id and returns the chain oldest
// first. Callers hold the lock.
func (s *Service) ancestryPath(id string) []string {
	var chain []string
	for current := id; current != ""; {
		c, ok := s.commits[current]
		if !ok {
			break
		}
		chain = append(chain, current)
		if len(c.Parents) == 0 {
			break
		}
		current = c.Parents[0]
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// pathUpTo returns the prefix of path ending at id, inclusive; the whole path
// when id is absent.
func pathUpTo(path []string, id string) []string {
	for i, v := range path {
		if v == id {
			return append([]string(nil), path[:i+1]...)
		}
	}
	return append([]string(nil), path...)
}
