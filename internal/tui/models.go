package tui

// View identifies the screen the app is currently showing. Loading,
// Stories and Error are the three top-level states; Search layers over
// Stories, and Detail returns to whichever view opened it.
type View int

const (
	ViewLoading View = iota
	ViewStories
	ViewError
	ViewSearch
	ViewDetail
)
