/*
	Project: Sahayak - teaching assistant for teachers & principals
	Target: primary & secondary schools
*/
package sahayak

/*
TODO: version the persisted snapshots (`sahayak_user`, `sahayak_selected_class`):
	a field rename in user.User currently reads back as a logged out session.

TODO: API serves one process-wide session. One Store per client (cookie keyed, gorilla/securecookie
	is already in) once more than one person uses the same server.

TODO: identity provider
	- replace storage/directory.Static with a Directory backed by the school's accounts (SaveProfile must persist!)
	- drop services/identity latency simulation then

TODO: principal onboarding: PrincipalProfile is only ever set by the directory

TODO: dashboard data per selected class (students, attendance, lessons) once the session is settled
*/
