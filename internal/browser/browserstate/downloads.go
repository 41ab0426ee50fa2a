package browserstate

import "fmt"

func reduceDownload(state *BrowserState, action DownloadAction) (*BrowserState, error) {
	switch a := action.(type) {
	case QueueDownload:
		if state.FindDownload(a.Download.ID) != nil {
			return state, fmt.Errorf("%w: %s", ErrDuplicateDownload, a.Download.ID)
		}
		download := a.Download
		if download.Status == "" {
			download.Status = DownloadQueued
		}
		next := state.clone()
		next.Downloads = append(cloneSlice(state.Downloads), download)
		return next, nil

	case UpdateDownloadStatus:
		idx := indexOfDownload(state.Downloads, a.DownloadID)
		if idx < 0 || state.Downloads[idx].Status == a.Status {
			return state, nil
		}
		next := state.clone()
		next.Downloads = cloneSlice(state.Downloads)
		next.Downloads[idx].Status = a.Status
		return next, nil

	case RemoveDownload:
		idx := indexOfDownload(state.Downloads, a.DownloadID)
		if idx < 0 {
			return state, nil
		}
		next := state.clone()
		next.Downloads = removeAt(state.Downloads, idx)
		return next, nil

	default:
		return state, unhandled(action)
	}
}

func indexOfDownload(downloads []DownloadState, id string) int {
	for i := range downloads {
		if downloads[i].ID == id {
			return i
		}
	}
	return -1
}
