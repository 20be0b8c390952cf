package symbols

import "vela/internal/types"

func typesForTest() *types.Interner { return types.NewInterner() }
