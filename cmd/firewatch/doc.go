// Command firewatch runs the fire detection pipeline and inspects its ledger.
package main
