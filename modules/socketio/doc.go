// Package socketio bridges the frame loop to a Socket.IO server.
//
// The bridge listens for one event per command name ("createNode",
// "startAnimation", ...) whose first argument is the command payload, and
// submits the decoded command to the loop. It emits:
//
//	updateView      {viewTag, props}            for every view update
//	animationEnd    {animationId, tag, finished} when an animation ends
//	commandError    {command, error}             for undecodable payloads
package socketio
