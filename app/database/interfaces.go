package database

type RunRepository interface {
	RecordRun(run Run) (int64, error)
	GetLastRun() (*Run, error)
	GetRemovals(runID int64) ([]Removal, error)
}
