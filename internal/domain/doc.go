// Package domain defines the core types of the topology diagram engine.
//
// These are plain data types with no rendering or storage concerns.
//
// # Core Types
//
// Device is a piece of network equipment drawn on the diagram (OLT, router,
// access point, ...). Its Position is expressed in template-local coordinates,
// the same space as the template canvas dimensions.
//
// Connection joins two devices by ID. A connection whose endpoints do not
// resolve is tolerated; the renderer simply skips it.
//
// Template declares the device archetypes and connection rules of one
// topology family (fiber, radio, wifi, SD-WAN) together with its canvas
// geometry and layout algorithm.
//
// TopologyConfig is the survey form output: which template to use, who the
// customer is and how many units of each archetype to draw.
//
// Graph is an instantiated diagram: concrete devices and connections.
//
// Session is a saved survey together with the device positions the user
// arranged.
package domain
