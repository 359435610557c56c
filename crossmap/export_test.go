package crossmap

// SetDiceWindow changes the dicing window and returns a function restoring it.
func SetDiceWindow(n uint64) (restore func()) {
	old := diceWindow
	diceWindow = n
	return func() { diceWindow = old }
}
