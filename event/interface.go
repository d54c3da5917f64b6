////////////////////////////////////////////////////////////////////////////////
// Copyright © 2022 xx foundation                                             //
//                                                                            //
// Use of this source code is governed by a license that can be found in the  //
// LICENSE file.                                                              //
////////////////////////////////////////////////////////////////////////////////

package event

// Callback receives delivered domain events.
type Callback func(priority int, category, evtType, details string)

// Reporter is the reporting api used by the interaction engine. Reports are
// made after a transition commits and are delivered at least once while the
// delivery service runs.
type Reporter interface {
	Report(priority int, category, evtType, details string)
}
