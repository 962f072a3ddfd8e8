package shutdown

// Please add the dependencies if you add your own priority here.
// Otherwise investigating deadlocks at shutdown is much more complicated.

const (
	PriorityCloseDatabase = iota // no dependencies
	PriorityCloseRegistry        // depends on PriorityCloseDatabase
	PriorityEscrowManager        // depends on PriorityCloseRegistry
	PriorityMQTTBroker           // triggered by PriorityEscrowManager
	PriorityStatusSync           // depends on PriorityEscrowManager
	PriorityRestAPI              // depends on PriorityEscrowManager
	PriorityPrometheus
	PriorityProfiling
)
