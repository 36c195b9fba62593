// thermal-transform - convert radiometric thermal images to calibrated rasters
//  Copyright (C) 2021, The Cacophony Project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"log"
	"time"

	"github.com/TheCacophonyProject/event-reporter/eventclient"
)

const (
	failedEventType    = "thermalTransformFailed"
	throttledEventType = "thermalTransformThrottled"
)

var addEvent = eventclient.AddEvent

// throttleEventListener uses the event api to record that conversions
// were throttled at a particular time.
type throttleEventListener struct{}

func (throttleEventListener) WhenThrottled() {
	queueEvent(throttledEventType, map[string]interface{}{
		"description": map[string]interface{}{
			"type": "throttle",
		},
	})
}

func reportFailure(err error) {
	details := map[string]interface{}{
		"error": err.Error(),
	}
	if se, ok := err.(*stageError); ok {
		details["stage"] = se.Stage
		details["path"] = se.Path
	}
	queueEvent(failedEventType, details)
}

func queueEvent(eventType string, details map[string]interface{}) {
	err := addEvent(eventclient.Event{
		Timestamp: time.Now(),
		Type:      eventType,
		Details:   details,
	})
	if err != nil {
		log.Printf("could not record %s event: %v", eventType, err)
	}
}
