package compile

// Event is the tagged union a compile run posts to its observer:
// ProgressEvent and FileEvent during the run, then exactly one of
// CompletedEvent or FailedEvent.
type Event interface{ compileEvent() }

// ProgressEvent is posted after each file, in processing order.
type ProgressEvent struct {
	Done    int    // Files processed so far, failures included.
	Total   int    // Files in the run.
	RelPath string // File just processed.
}

// FileEvent reports the per-file outcome. Err is nil on success.
type FileEvent struct {
	RelPath string
	Err     error
}

// CompletedEvent ends a run that produced an output file, including runs
// that were cancelled partway (Result.Cancelled is set).
type CompletedEvent struct {
	Result *Result
}

// FailedEvent ends a run that could not write the destination at all.
type FailedEvent struct {
	Err error
}

func (ProgressEvent) compileEvent()  {}
func (FileEvent) compileEvent()      {}
func (CompletedEvent) compileEvent() {}
func (FailedEvent) compileEvent()    {}
