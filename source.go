package featuregraph

import "strings"

// Source is the data-source bucket a feature belongs to, inferred from its
// name prefix. The mapping is a UI heuristic rather than a graph property,
// so it lives in this one table: adding a prefix means adding a rule here
// and nowhere else.
type Source struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var (
	SourceGit       = Source{ID: "git", Label: "Git History"}
	SourceGitHub    = Source{ID: "github", Label: "GitHub"}
	SourceBuildLogs = Source{ID: "build_logs", Label: "Build Logs"}
	SourceRepoMeta  = Source{ID: "repo_meta", Label: "Repository Metadata"}
	SourceSonar     = Source{ID: "sonar", Label: "SonarQube"}
	SourceTrivy     = Source{ID: "trivy", Label: "Trivy"}
	SourceOther     = Source{ID: "other", Label: "Other"}
)

// sourceRules are matched in order; the first prefix hit wins. "tr_log_"
// must precede "tr_" or build-log features would land in repo metadata.
var sourceRules = []struct {
	prefix string
	source Source
}{
	{"git_", SourceGit},
	{"gh_", SourceGitHub},
	{"tr_log_", SourceBuildLogs},
	{"tr_", SourceRepoMeta},
	{"sonar_", SourceSonar},
	{"trivy_", SourceTrivy},
}

// sourceOrder fixes the display order of buckets across the list view and
// the summary.
var sourceOrder = []Source{
	SourceGit, SourceGitHub, SourceBuildLogs, SourceRepoMeta,
	SourceSonar, SourceTrivy, SourceOther,
}

// SourceOf maps a feature name to its source bucket.
func SourceOf(featureName string) Source {
	for _, r := range sourceRules {
		if strings.HasPrefix(featureName, r.prefix) {
			return r.source
		}
	}
	return SourceOther
}

// NodeSource maps a node to the source bucket of its first feature.
// Resource nodes own no features and land in the Other bucket.
func NodeSource(n Node) Source {
	if len(n.Features) == 0 {
		return SourceOther
	}
	return SourceOf(n.Features[0])
}
