package vcs

// Info is the version-control context attached to a push. Fields that
// could not be determined are empty.
type Info struct {
	Type    Type
	Ref     string
	Default string
	Commit  string
	Owner   string
	Repo    string
	Dirty   bool
}

// Describe gathers Info from v. It never fails: each missing piece is left
// empty. A nil v yields the zero Info.
func Describe(v VCS) Info {
	if v == nil {
		return Info{}
	}

	info := Info{Type: v.Name()}
	info.Ref, _ = v.CurrentRef()
	info.Default, _ = v.DefaultRef()
	info.Commit, _ = v.GetCommitHash("")
	info.Dirty, _ = v.HasChanges()

	if remote, err := PrimaryRemote(v); err == nil {
		info.Owner, info.Repo, _ = RepoSlug(remote.URL)
	}
	return info
}

// PrimaryRemote returns the DefaultRemote if configured, else the first
// remote.
func PrimaryRemote(v VCS) (RemoteInfo, error) {
	remotes, err := v.GetRemotes()
	if err != nil {
		return RemoteInfo{}, err
	}
	if len(remotes) == 0 {
		return RemoteInfo{}, ErrNoRemote
	}
	for _, r := range remotes {
		if r.Name == DefaultRemote {
			return r, nil
		}
	}
	return remotes[0], nil
}

// WithDefaultOverride returns v with DefaultRef replaced by branch. An
// empty branch returns v unchanged.
func WithDefaultOverride(v VCS, branch string) VCS {
	if branch == "" || v == nil {
		return v
	}
	return &overridden{VCS: v, branch: branch}
}

type overridden struct {
	VCS
	branch string
}

func (o *overridden) DefaultRef() (string, error) {
	return o.branch, nil
}
