package app

import (
	"errors"
	"log"
	"time"

	"github.com/ayusman/mudra/internal/action"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/store"
	"gocv.io/x/gocv"
)

// localStream keys cooldowns for the camera pipeline.
const localStream = "local"

// runPipeline reads frames at the camera rate until stopCh closes.
//
// Every frame is kept for the preview stream. While enabled, each frame is
// run through the detector and the primary hand through the local session;
// a triggered action is dispatched to its plugin.
func (a *App) runPipeline(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(time.Second / time.Duration(a.camera.FPS()))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			frame, err := a.camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			if a.IsEnabled() && a.Detector() != nil {
				if ev, err := a.RecognizeFrame("", frame); err != nil {
					log.Printf("Error detecting hands: %v", err)
				} else if ev.Triggered {
					a.dispatch(ev)
				}
			}

			a.keepFrame(frame)
		}
	}
}

// keepFrame replaces the preview frame, taking ownership of frame.
func (a *App) keepFrame(frame *gocv.Mat) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.hasFrame {
		a.frame.Close()
	}
	a.frame = *frame
	a.hasFrame = true
}

// Frame returns a copy of the latest camera frame. The caller must close it.
func (a *App) Frame() (*gocv.Mat, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if !a.hasFrame {
		return nil, false
	}
	clone := a.frame.Clone()
	return &clone, true
}

// RecognizeFrame detects hands in frame and recognizes the primary one on
// the given stream. An empty sessionID selects the local camera stream.
func (a *App) RecognizeFrame(sessionID string, frame *gocv.Mat) (Event, error) {
	hands, err := a.detect(frame)
	if err != nil {
		return Event{}, err
	}
	return a.Recognize(sessionID, hands)
}

// RecognizeFrameOnce detects hands in frame and recognizes the primary one
// as a single-frame stream. See RecognizeOnce.
func (a *App) RecognizeFrameOnce(frame *gocv.Mat) (Event, error) {
	hands, err := a.detect(frame)
	if err != nil {
		return Event{}, err
	}
	return a.RecognizeOnce(hands)
}

func (a *App) detect(frame *gocv.Mat) ([]detector.HandLandmarks, error) {
	d := a.Detector()
	if d == nil {
		return nil, ErrNoDetector
	}
	return d.Detect(frame)
}

// Recognize classifies the primary hand of one frame on the given stream,
// applies the confidence threshold and the per-action cooldown, records
// triggered actions and publishes the event. An empty sessionID selects the
// local camera stream. A frame without hands yields a None event and leaves
// the stream's history untouched.
func (a *App) Recognize(sessionID string, hands []detector.HandLandmarks) (Event, error) {
	return a.recognize(sessionID, hands, true, func(hand *detector.HandLandmarks) (gesture.Result, error) {
		return a.process(sessionID, hand)
	})
}

// RecognizeOnce classifies the primary hand of a frame that belongs to no
// stream. The result is the raw classification with no smoothing history
// and no cooldown, and neither the local camera stream nor any session sees
// the frame.
func (a *App) RecognizeOnce(hands []detector.HandLandmarks) (Event, error) {
	return a.recognize("", hands, false, gesture.NewSession().Process)
}

func (a *App) recognize(sessionID string, hands []detector.HandLandmarks, cooldown bool,
	process func(*detector.HandLandmarks) (gesture.Result, error)) (Event, error) {
	ev := Event{
		SessionID:     sessionID,
		Gesture:       gesture.None,
		HandsDetected: len(hands),
		Time:          a.now(),
	}

	primary := detector.Primary(hands)
	if primary == nil {
		a.record(ev)
		return ev, nil
	}

	res, err := process(primary)
	if err != nil {
		return Event{}, err
	}

	ev.Gesture = res.Gesture
	ev.Confidence = res.Confidence
	ev.Handedness = primary.Handedness

	if act, ok := a.mapper.Resolve(res, a.Threshold()); ok {
		ev.Action = act
		ev.Triggered = !cooldown || a.cooledDown(sessionID, act, ev.Time)
	}

	if ev.Gesture != gesture.None {
		log.Printf("Gesture recognized: %s (%.2f) hands=%d", ev.Gesture, ev.Confidence, ev.HandsDetected)
	}

	a.record(ev)
	return ev, nil
}

func (a *App) process(sessionID string, hand *detector.HandLandmarks) (gesture.Result, error) {
	if sessionID != "" {
		return a.sessions.Process(sessionID, hand)
	}
	a.localMu.Lock()
	defer a.localMu.Unlock()
	return a.local.Process(hand)
}

// cooledDown reports whether act may fire on the stream at now, and if so
// starts a new cooldown.
func (a *App) cooledDown(sessionID string, act action.Action, now time.Time) bool {
	stream := sessionID
	if stream == "" {
		stream = localStream
	}
	key := stream + "/" + string(act)

	a.mu.Lock()
	defer a.mu.Unlock()
	if last, ok := a.lastFired[key]; ok && now.Sub(last) < a.config.Cooldown {
		return false
	}
	a.lastFired[key] = now
	return true
}

// record keeps ev as the last event, logs triggered actions and notifies
// subscribers.
func (a *App) record(ev Event) {
	a.mu.Lock()
	a.last = ev
	a.hasLast = true
	a.mu.Unlock()

	if ev.Triggered && a.config.Store != nil {
		rec := &store.Recognition{
			SessionID:  ev.SessionID,
			Gesture:    string(ev.Gesture),
			Confidence: ev.Confidence,
			Action:     string(ev.Action),
			Handedness: ev.Handedness,
			CreatedAt:  ev.Time,
		}
		if err := a.config.Store.Recognitions().Create(rec); err != nil {
			log.Printf("Failed to record recognition: %v", err)
		}
	}

	a.publish(ev)
}

// dispatch runs the plugin bound to ev's action. A binding that names a
// plugin wins; otherwise the first plugin declaring the action is used.
func (a *App) dispatch(ev Event) {
	a.mu.RLock()
	b := a.bindings[ev.Gesture]
	a.mu.RUnlock()

	var p *plugin.Plugin
	var err error
	if b.pluginName != "" {
		p, err = a.pluginMgr.Get(b.pluginName)
	} else {
		p, err = a.pluginMgr.FindByAction(string(ev.Action))
	}
	if err != nil {
		if errors.Is(err, plugin.ErrPluginNotFound) {
			log.Printf("No plugin for action %s", ev.Action)
			return
		}
		log.Printf("Plugin lookup failed for action %s: %v", ev.Action, err)
		return
	}

	req := &plugin.Request{
		Action:     string(ev.Action),
		Gesture:    string(ev.Gesture),
		Confidence: ev.Confidence,
		Handedness: ev.Handedness,
		Config:     b.config,
	}

	go func() {
		resp, err := a.pluginExec.Execute(a.ctx, p, req)
		if err != nil {
			log.Printf("Plugin %s failed for %s: %v", p.Manifest.Name, ev.Action, err)
			return
		}
		if !resp.Success {
			log.Printf("Plugin %s rejected %s: %s", p.Manifest.Name, ev.Action, resp.Error)
			return
		}
		log.Printf("Action triggered: %s via %s (gesture %s)", ev.Action, p.Manifest.Name, ev.Gesture)
	}()
}
