package mqtt

import (
	"fmt"
	"strings"
)

// Topics builds the topic names published under a configured prefix.
//
//	topics := mqtt.Topics{Prefix: "tsprovider"}
//	topics.Sample("cpu") // "tsprovider/samples/cpu"
type Topics struct {
	Prefix string
}

// Status returns the retained online/offline status topic.
//
// Example: tsprovider/status
func (t Topics) Status() string {
	return t.Prefix + "/status"
}

// Sample returns the topic a source's ingested samples are published on.
//
// Example: tsprovider/samples/cpu
func (t Topics) Sample(source string) string {
	return fmt.Sprintf("%s/samples/%s", t.Prefix, topicSegment(source))
}

// AllSamples returns the wildcard matching every sample topic.
func (t Topics) AllSamples() string {
	return t.Prefix + "/samples/+"
}

// segmentReplacer maps characters that are not allowed inside a single
// publish topic level.
var segmentReplacer = strings.NewReplacer("/", "_", "+", "_", "#", "_", "\x00", "")

// topicSegment makes a source name safe to use as one topic level.
func topicSegment(name string) string {
	return segmentReplacer.Replace(name)
}

// validPublishTopic reports whether topic can be published to.
func validPublishTopic(topic string) bool {
	return topic != "" && !strings.ContainsAny(topic, "+#\x00")
}
