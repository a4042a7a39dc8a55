// Package stpsim simulates IEEE 802.1D Spanning Tree Protocol convergence
// across a topology of bridges connected by bidirectional point-to-point
// links. The simulation is clocked: a Topology advances one integer tick
// at a time, and every Bridge executes its local STP state machine once
// per tick, exchanging BPDUs with its neighbors until every port has
// settled into Forwarding or Blocking.
//
// The package models only the control plane of 802.1D (root election,
// port roles, the Blocking/Listening/Learning/Forwarding state machine,
// topology-change notification and aging). It does not model RSTP
// proposal/agreement, VLANs, BPDU wire encoding, or data-plane frame
// forwarding beyond the MAC-learning table required by the Learning
// state transition.
package stpsim
