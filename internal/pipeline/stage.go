package pipeline

// Stage identifies one step of an analysis run.
type Stage int

const (
	StageParseBaseGraph Stage = iota
	StageDetectPatternInstances
	StageCreateVirtualSubgraph
	StageHashAffectedNodes
	StageCrossCheckGrammar
	StageGenerateMonolithicRepresentation
	StageApplyTargetPolicies
	StageValidateGraphConsistency
)

var stageNames = [...]string{
	"ParseBaseGraph",
	"DetectPatternInstances",
	"CreateVirtualSubgraph",
	"HashAffectedNodes",
	"CrossCheckGrammar",
	"GenerateMonolithicRepresentation",
	"ApplyTargetPolicies",
	"ValidateGraphConsistency",
}

// Stages lists every stage in execution order.
var Stages = []Stage{
	StageParseBaseGraph,
	StageDetectPatternInstances,
	StageCreateVirtualSubgraph,
	StageHashAffectedNodes,
	StageCrossCheckGrammar,
	StageGenerateMonolithicRepresentation,
	StageApplyTargetPolicies,
	StageValidateGraphConsistency,
}

func (s Stage) String() string {
	if s >= 0 && int(s) < len(stageNames) {
		return stageNames[s]
	}
	return "unknown"
}

// ProgressEvent is emitted when a stage starts, finishes or fails.
type ProgressEvent struct {
	Stage          Stage
	Status         ProgressStatus
	ElapsedMS      float64
	EstimatedBytes int
	Message        string
}

// ProgressStatus is the state of a stage.
type ProgressStatus string

const (
	ProgressWorking  ProgressStatus = "working"
	ProgressComplete ProgressStatus = "complete"
	ProgressSkipped  ProgressStatus = "skipped"
	ProgressFailed   ProgressStatus = "failed"
)
