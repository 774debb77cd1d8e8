// Package mqtt publishes ingested samples to an MQTT broker.
//
// When mqtt.enabled is set, every sample the ingestor stores is also
// published as JSON on <topic_prefix>/samples/<source>, so other services
// can follow live values without polling the dashboard endpoints. A retained
// status message on <topic_prefix>/status tracks whether the provider is
// online; the broker publishes the offline variant through Last Will and
// Testament if the process dies.
//
// # Usage
//
//	client, err := mqtt.Connect(ctx, cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.PublishSample(ctx, series.Sample{Measurement: "cpu", Value: 0.4, Timestamp: now})
//
// Publishing is best effort from the ingestor's point of view: a failed
// publish is logged and never undoes the store write.
package mqtt
