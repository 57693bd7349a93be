// Package cli is the terminal front-end of the screen lock: a small REPL
// for enabling, disabling and tuning the lock and for revealing sensitive
// values through the unlock gate.
//
// Passcodes are read without echo when stdin is a terminal and from plain
// lines otherwise, then fed digit by digit into the lock engine. An empty
// line abandons the current entry; "<" deletes the last digit; "bio" uses
// biometric unlock where it is offered.
//
// Commands
//
//	status                   show the lock configuration
//	enable                   create a passcode and turn the lock on
//	resume                   turn a paused lock back on
//	forget                   erase the passcode of a paused lock
//	disable pause|delete     turn the lock off, keeping or erasing the passcode
//	change                   change the passcode
//	biometric on|off         toggle biometric unlock
//	timeout <value>          immediately, 1min, 5min, 15min, 30min or never
//	hide on|off              require the passcode to reveal sensitive values
//	lock                     lock now
//	background               simulate leaving the app
//	balance                  reveal the account balance
//	card <n>                 reveal the number of card n
//	help, exit
package cli
