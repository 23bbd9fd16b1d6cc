// Package catalog maps logical appliance controls to the protocol codes carried in
// status and command payloads.
//
// The appliance addresses every setting by a short code ("Pow", "SetTem", "WdSpd", ...)
// and an integer value. This package owns that table, the ordered code list requested
// on every status poll, and the typed value enums used by the session setters.
//
// Values are not range-checked here; the appliance is the authority on what it accepts.
package catalog
