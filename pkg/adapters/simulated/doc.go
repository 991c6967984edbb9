/*
Package simulated provides in-process stand-ins for the restaurant booking API and the SMS gateway.

Both fail at a configurable random rate and on well-known trigger values, so every recovery
path of the conversation can be exercised by hand:

  - BookingAPI always fails for the restaurant "Test Failure Restaurant".
  - SMSGateway always fails for the phone number "555-SMS-FAIL".
*/
package simulated
