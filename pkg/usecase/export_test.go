package usecase

// ComposePrompt is exported for testing
var ComposePrompt = composePrompt

// DropOldest is exported for testing
var DropOldest = dropOldest
