// Package scheduler turns risk predictions into prioritised maintenance
// tasks. Every change to the task list triggers one synchronous reordering
// pass that sorts the queue and greedily assigns each task the earliest time
// window inside its deadline that avoids rush hours and fits crew capacity.
// Tasks follow the lifecycle created -> scheduled -> executed | superseded.
package scheduler
