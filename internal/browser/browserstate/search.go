package browserstate

func reduceSearch(state *BrowserState, action SearchAction) (*BrowserState, error) {
	switch a := action.(type) {
	case SetRegion:
		if state.Search.Region == a.Region && !state.Search.Loading && state.Search.Engines != nil {
			return state, nil
		}
		next := state.clone()
		next.Search = SearchState{Region: a.Region, Loading: true}
		return next, nil

	case SetSearchEngines:
		if a.Region != state.Search.Region {
			// Stale result for a region the user already left
			return state, nil
		}
		next := state.clone()
		next.Search = SearchState{
			Region:          a.Region,
			Engines:         cloneSlice(a.Engines),
			DefaultEngineID: a.DefaultEngineID,
		}
		if next.Search.DefaultEngineID == "" && len(a.Engines) > 0 {
			next.Search.DefaultEngineID = a.Engines[0].ID
		}
		return next, nil

	default:
		return state, unhandled(action)
	}
}
